// Package services wires the building blocks (sheet reader, importer,
// stores, migrations) into the operations the CLI exposes.
package services
