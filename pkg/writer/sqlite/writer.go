// Package sqlite exports render passes to SQLite database files
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ChrisMcGann/MALDIView/pkg/render"
)

// Date format for RenderTable (ISO 8601)
const creationDateFormat = "2006-01-02 15:04:05"

// Writer handles writing render passes to SQLite database files
type Writer struct {
	db         *sql.DB
	outputPath string
	renderStmt *sql.Stmt
	plotStmt   *sql.Stmt
	closed     bool
}

// NewWriter creates a new SQLite writer. Passes are appended to an existing
// database.
func NewWriter(outputPath string) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS RenderTable (
		RenderId TEXT PRIMARY KEY,
		CreationDate TEXT,
		LowerLimit DOUBLE,
		UpperLimit DOUBLE,
		UseFilter BOOL,
		FilterSigma INTEGER,
		PlotCount INTEGER
	);

	CREATE TABLE IF NOT EXISTS PlotTable (
		RenderId TEXT REFERENCES RenderTable(RenderId),
		PlotIndex INTEGER,
		Name TEXT,
		PointCount INTEGER,
		XMin DOUBLE,
		XMax DOUBLE,
		YMin DOUBLE,
		YMax DOUBLE,
		Empty BOOL,
		blobMass BLOB,
		blobIntensity BLOB,
		PRIMARY KEY (RenderId, PlotIndex)
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements prepares SQL statements for insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.renderStmt, err = w.db.Prepare(`
		INSERT INTO RenderTable (
			RenderId, CreationDate, LowerLimit, UpperLimit, UseFilter, FilterSigma, PlotCount
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare render statement: %w", err)
	}

	w.plotStmt, err = w.db.Prepare(`
		INSERT INTO PlotTable (
			RenderId, PlotIndex, Name, PointCount, XMin, XMax, YMin, YMax, Empty,
			blobMass, blobIntensity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare plot statement: %w", err)
	}

	return nil
}

// WritePass writes one render pass and all its plots in a single transaction
func (w *Writer) WritePass(pass render.Pass) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id := pass.ID.String()
	created := pass.At
	if created.IsZero() {
		created = time.Now()
	}

	_, err = tx.Stmt(w.renderStmt).Exec(
		id,                                 // RenderId
		created.Format(creationDateFormat), // CreationDate
		pass.Params.LowerLimit,             // LowerLimit
		pass.Params.UpperLimit,             // UpperLimit
		pass.Params.UseFilter,              // UseFilter
		pass.Params.FilterSigma,            // FilterSigma
		len(pass.Plots),                    // PlotCount
	)
	if err != nil {
		return fmt.Errorf("failed to insert render: %w", err)
	}

	plotStmt := tx.Stmt(w.plotStmt)
	for _, plot := range pass.Plots {
		_, err = plotStmt.Exec(
			id,                    // RenderId
			plot.Index,            // PlotIndex
			plot.Name,             // Name
			len(plot.X),           // PointCount
			plot.XRange.Min,       // XMin
			plot.XRange.Max,       // XMax
			plot.YRange.Min,       // YMin
			plot.YRange.Max,       // YMax
			plot.Empty,            // Empty
			encodeFloat64(plot.X), // blobMass
			encodeFloat64(plot.Y), // blobIntensity
		)
		if err != nil {
			return fmt.Errorf("failed to insert plot %s: %w", plot.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit render %s: %w", id, err)
	}
	return nil
}

// encodeFloat64 encodes values as a little-endian float64 blob
func encodeFloat64(values []float64) []byte {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

// DecodeFloat64 decodes a little-endian float64 blob written by WritePass
func DecodeFloat64(blob []byte) ([]float64, error) {
	if len(blob)%8 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 8", len(blob))
	}
	values := make([]float64, len(blob)/8)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return values, nil
}

// Close closes the prepared statements and the database connection
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.renderStmt != nil {
		w.renderStmt.Close()
	}
	if w.plotStmt != nil {
		w.plotStmt.Close()
	}

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
