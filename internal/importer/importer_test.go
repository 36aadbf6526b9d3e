package importer_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univinfo/univload/internal/importer"
	"github.com/univinfo/univload/internal/logging"
	"github.com/univinfo/univload/internal/registry"
	"github.com/univinfo/univload/internal/sheet"
	"github.com/univinfo/univload/internal/store/memstore"
	"github.com/univinfo/univload/pkg/univload"
)

var _ importer.Session = (*memstore.Store)(nil)

func validRow(code int, corporation string) []string {
	return []string{
		"대학", fmt.Sprint(code), fmt.Sprintf("University %d", code), "본교", "4년제",
		"0", "서울", "사립", "", corporation, "기존",
	}
}

func tableOf(rows ...[]string) *sheet.Table {
	return sheet.NewTable(importer.RequiredColumns, rows)
}

func newImporter(t *testing.T, opts ...importer.Option) (*importer.Importer, *test.Hook) {
	t.Helper()
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	opts = append([]importer.Option{importer.WithLogger(logging.FromLogrus(base))}, opts...)
	im, err := importer.New(opts...)
	require.NoError(t, err)
	return im, hook
}

func TestNew_RejectsBatchSizeBelowOne(t *testing.T) {
	_, err := importer.New(importer.WithBatchSize(0))
	assert.ErrorIs(t, err, univload.ErrInvalidConfig)
}

func TestImport_MissingColumnWritesNothing(t *testing.T) {
	header := make([]string, 0, len(importer.RequiredColumns))
	for _, c := range importer.RequiredColumns {
		if c != importer.ColCorporation && c != importer.ColStatus {
			header = append(header, c)
		}
	}
	table := sheet.NewTable(header, [][]string{{"대학", "1"}})
	store := memstore.New()
	im, hook := newImporter(t)

	res, err := im.Import(context.Background(), table, store)

	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, univload.ErrSchemaMismatch)
	var mce *importer.MissingColumnsError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, []string{importer.ColCorporation, importer.ColStatus}, mce.Columns)
	assert.Empty(t, store.CommitLog())
	assert.Empty(t, store.Universities())
	assert.Len(t, hook.AllEntries(), 2)
}

func TestImport_ExtraColumnsIgnored(t *testing.T) {
	header := append([]string{"비고"}, importer.RequiredColumns...)
	table := sheet.NewTable(header, [][]string{append([]string{"anything"}, validRow(1, "")...)})
	store := memstore.New()
	im, _ := newImporter(t)

	res, err := im.Import(context.Background(), table, store)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
}

func TestImport_SharedCorporation(t *testing.T) {
	store := memstore.New()
	im, hook := newImporter(t)

	res, err := im.Import(context.Background(), tableOf(validRow(1, "재단"), validRow(2, "재단")), store)

	require.NoError(t, err)
	assert.Equal(t, 1, res.CorporationsCreated)
	corps := store.Corporations()
	require.Len(t, corps, 1)
	univs := store.Universities()
	require.Len(t, univs, 2)
	for _, u := range univs {
		require.NotNil(t, u.CorporationID)
		assert.Equal(t, corps[0].ID, *u.CorporationID)
	}

	var added int
	for _, e := range hook.AllEntries() {
		if strings.Contains(e.Message, "new corporation") {
			added++
		}
	}
	assert.Equal(t, 1, added)
}

func TestImport_CorporationCommittedOnCreation(t *testing.T) {
	store := memstore.New()
	im, _ := newImporter(t)

	res, err := im.Import(context.Background(), tableOf(validRow(1, ""), validRow(2, "재단"), validRow(3, "")), store)

	require.NoError(t, err)
	// checkpoint at 0, corporation commit during row 1, final commit
	assert.Equal(t, []int{1, 1, 3}, store.CommitLog())
	assert.Equal(t, 3, res.Commits)
}

func TestImport_InvalidEnumRowIsSkipped(t *testing.T) {
	rows := [][]string{validRow(1, ""), validRow(2, ""), validRow(3, ""), validRow(4, "")}
	rows[2][0] = "초등학교"
	store := memstore.New()
	im, hook := newImporter(t)

	res, err := im.Import(context.Background(), tableOf(rows...), store)

	require.NoError(t, err)
	assert.Equal(t, 3, res.Inserted)
	require.Len(t, res.Failures, 1)
	f := res.Failures[0]
	assert.Equal(t, 2, f.Index)
	assert.Equal(t, 4, f.Line)
	assert.Equal(t, "3", f.Code)
	assert.ErrorIs(t, f.Err, registry.ErrUnknownLabel)

	var logged bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel && strings.Contains(e.Message, "row 2") && strings.Contains(e.Message, "초등학교") {
			logged = true
		}
	}
	assert.True(t, logged, "row failure should be logged with its index")

	var codes []int64
	for _, u := range store.Universities() {
		codes = append(codes, u.Code)
	}
	assert.Equal(t, []int64{1, 2, 4}, codes)
}

func TestImport_CheckpointsEveryBatch(t *testing.T) {
	rows := make([][]string, 250)
	for i := range rows {
		rows[i] = validRow(1000+i, "")
	}
	store := memstore.New()
	im, _ := newImporter(t)

	res, err := im.Import(context.Background(), tableOf(rows...), store)

	require.NoError(t, err)
	assert.Equal(t, []int{0, 100, 200}, res.Checkpoints)
	assert.Equal(t, []int{1, 101, 201, 250}, store.CommitLog())
	assert.Equal(t, 4, res.Commits)
	assert.Equal(t, 250, res.Inserted)
	assert.Empty(t, res.Failures)
}

func TestImport_ConcreteRow(t *testing.T) {
	row := []string{"대학", "1001", "Test University", "본교", "4년제", "False", "서울", "사립", "", "Test Foundation", "기존"}
	store := memstore.New()
	im, _ := newImporter(t)

	res, err := im.Import(context.Background(), tableOf(row), store)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	corps := store.Corporations()
	require.Len(t, corps, 1)
	assert.Equal(t, "Test Foundation", corps[0].Name)

	u := store.Universities()[0]
	assert.Equal(t, int64(1001), u.Code)
	assert.Equal(t, registry.SchoolTypeUniversity, u.Type)
	assert.Equal(t, "Test University", u.Name)
	assert.Equal(t, registry.CampusMain, u.Campus)
	require.NotNil(t, u.AcademicSystem)
	assert.Equal(t, "4년제", *u.AcademicSystem)
	assert.False(t, u.IsRemote)
	assert.Equal(t, registry.RegionSeoul, u.Region)
	assert.Equal(t, registry.EstablishmentPrivate, u.EstablishmentType)
	assert.Nil(t, u.RelatedLaws)
	require.NotNil(t, u.CorporationID)
	assert.Equal(t, corps[0].ID, *u.CorporationID)
	assert.Equal(t, registry.StatusExisting, u.Status)
}

func TestImport_DuplicateCodeFailsSecondRow(t *testing.T) {
	store := memstore.New()
	im, _ := newImporter(t)

	res, err := im.Import(context.Background(), tableOf(validRow(5, ""), validRow(5, ""), validRow(6, "")), store)

	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, 1, res.Failures[0].Index)
	assert.ErrorIs(t, res.Failures[0].Err, memstore.ErrDuplicateCode)
}

func TestImport_CommitFailureMovesStagedRows(t *testing.T) {
	rows := [][]string{validRow(1, ""), validRow(2, ""), validRow(3, ""), validRow(4, ""), validRow(5, "")}
	store := memstore.New()
	boom := errors.New("connection reset")
	store.FailCommit = func(n int) error {
		if n == 1 {
			return boom
		}
		return nil
	}
	im, _ := newImporter(t, importer.WithBatchSize(2))

	res, err := im.Import(context.Background(), tableOf(rows...), store)

	require.NoError(t, err)
	assert.Equal(t, 3, res.Inserted)
	require.Len(t, res.Failures, 2)
	assert.Equal(t, 1, res.Failures[0].Index)
	assert.Equal(t, 2, res.Failures[1].Index)
	assert.ErrorIs(t, res.Failures[0].Err, boom)
	assert.Equal(t, []int{0, 4}, res.Checkpoints)
	assert.Len(t, store.Universities(), 3)
}

func TestImport_CancelledContext(t *testing.T) {
	store := memstore.New()
	im, _ := newImporter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := im.Import(ctx, tableOf(validRow(1, ""), validRow(2, "")), store)

	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, 0, res.Inserted)
	assert.Empty(t, store.Universities())
}

func TestImport_EmptyTable(t *testing.T) {
	store := memstore.New()
	im, _ := newImporter(t)

	res, err := im.Import(context.Background(), tableOf(), store)

	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
	assert.Equal(t, 1, res.Commits)
	assert.Empty(t, res.Checkpoints)
}

func TestImport_BadScalarsAreRowFailures(t *testing.T) {
	badCode := validRow(1, "")
	badCode[1] = "abc"
	badRemote := validRow(2, "")
	badRemote[5] = "maybe"
	longName := validRow(3, "")
	longName[2] = strings.Repeat("가", registry.MaxTextLength+1)
	noName := validRow(4, "")
	noName[2] = "  "

	store := memstore.New()
	im, _ := newImporter(t)

	res, err := im.Import(context.Background(), tableOf(badCode, badRemote, longName, noName, validRow(5, "")), store)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	require.Len(t, res.Failures, 4)
	var fe *importer.FieldError
	require.True(t, errors.As(res.Failures[0].Err, &fe))
	assert.Equal(t, importer.ColCode, fe.Column)
	require.True(t, errors.As(res.Failures[1].Err, &fe))
	assert.Equal(t, importer.ColRemote, fe.Column)
}
