package domain

import (
	"context"

	"github.com/ncasuk/ncas-aws-10-software/internal/amof"
)

// Dataset is an open, writable archival file sized to a fixed number of timesteps.
type Dataset interface {
	// WriteVariable stores values for a product variable. The slice type must
	// match the variable's storage type.
	WriteVariable(name string, values any) error

	SetGlobalAttr(name, value string) error
	GlobalAttr(name string) (string, bool)
	GlobalAttrs() []amof.GlobalAttr

	// Path is where the file is written on Close.
	Path() string
	Close() error
}

// DatasetCreator opens new Datasets for a product.
type DatasetCreator interface {
	// Create opens a file identified by id with the given dimension lengths.
	Create(ctx context.Context, id amof.FileID, dims map[string]int) (Dataset, error)
}
