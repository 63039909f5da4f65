package db

import (
	"fmt"
	"path/filepath"
	"strings"

	puresqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultFileName = "spicedash.db"

// Options wybiera sterownik bazy lokalnego stanu.
//   - "sqlite" (domyślny, cgo), "sqlite-pure" (bez cgo): DSN = ścieżka pliku, pusty -> <dir>/spicedash.db
//   - "postgres", "mysql": DSN wymagany
type Options struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn,omitempty"`
}

type Handle struct {
	DB     *gorm.DB
	Path   string
	Driver string
}

func OpenAt(dir string, opt Options) (*Handle, error) {
	driver := strings.ToLower(strings.TrimSpace(opt.Driver))
	if driver == "" {
		driver = "sqlite"
	}

	var (
		dial gorm.Dialector
		path = opt.DSN
	)
	switch driver {
	case "sqlite", "sqlite-pure":
		if path == "" {
			path = filepath.Join(dir, defaultFileName)
		}
		if driver == "sqlite" {
			dial = sqlite.Open(path)
		} else {
			dial = puresqlite.Open(path)
		}
	case "postgres":
		if path == "" {
			return nil, fmt.Errorf("db: driver %q wymaga dsn", driver)
		}
		dial = postgres.Open(path)
	case "mysql":
		if path == "" {
			return nil, fmt.Errorf("db: driver %q wymaga dsn", driver)
		}
		dial = mysql.Open(path)
	default:
		return nil, fmt.Errorf("db: nieznany driver %q", opt.Driver)
	}

	gdb, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // logger.Info jeśli potrzebny SQL
	})
	if err != nil {
		return nil, fmt.Errorf("db open (%s): %w", driver, err)
	}
	return &Handle{DB: gdb, Path: path, Driver: driver}, nil
}

func (h *Handle) Close() error {
	sqlDB, err := h.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
