package census

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"time"

	"github.com/lib/pq"

	"server/config"
	"server/internal/logger"
)

// Archiver mirrors accepted census rows into Postgres with COPY so
// submissions can be audited after the fact. Archival is best-effort:
// the caller treats failures as warnings, never as submission failures.
type Archiver struct {
	log logger.Logger
	db  *sql.DB
}

// Columns archived per census row, in COPY order. Headers not in this
// list are dropped.
var archiveColumns = []string{
	"run_id", "row_number", "last_name", "first_name", "employee_id",
	"birth_date", "hire_date", "termination_date",
	"compensation", "employee_deferrals", "employer_match",
	"benefit_amount", "account_balance", "ownership_percent",
	"hce", "key_employee", "officer", "union_employee",
}

func NewArchiver(config config.Config) (*Archiver, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		config.DatabaseHost,
		config.DatabasePort,
		config.DatabaseUser,
		config.DatabasePassword,
		config.DatabaseName,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open census archive database: %w", err)
	}

	db.SetMaxOpenConns(2 * runtime.NumCPU())
	db.SetMaxIdleConns(runtime.NumCPU())
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Archiver{
		log: logger.New("censusArchiver"),
		db:  db,
	}, nil
}

func (a *Archiver) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// ArchiveRows streams the decoded rows into the census_rows table in a
// single COPY transaction.
func (a *Archiver) ArchiveRows(ctx context.Context, runID string, file *File) (int, error) {
	log := a.log.Function("ArchiveRows")
	startTime := time.Now()

	// Map each archive column to its index in the uploaded headers,
	// computed once before the row loop.
	headerIndex := make(map[string]int, len(file.Headers))
	for i, header := range file.Headers {
		headerIndex[header] = i
	}

	columnMapping := make([]int, len(archiveColumns))
	for i, col := range archiveColumns {
		if idx, ok := headerIndex[col]; ok {
			columnMapping[i] = idx
		} else {
			columnMapping[i] = -1
		}
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, log.Err("failed to begin archive transaction", err, "runID", runID)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("census_rows", archiveColumns...))
	if err != nil {
		return 0, log.Err("failed to prepare COPY statement", err, "runID", runID)
	}
	defer stmt.Close()

	for rowNumber, row := range file.Rows {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		record := make([]interface{}, len(archiveColumns))
		for i, csvIndex := range columnMapping {
			switch archiveColumns[i] {
			case "run_id":
				record[i] = runID
			case "row_number":
				record[i] = rowNumber + 1
			default:
				if csvIndex != -1 && csvIndex < len(row) {
					record[i] = valueOrNull(row[csvIndex])
				} else {
					record[i] = nil
				}
			}
		}

		if _, err := stmt.Exec(record...); err != nil {
			return 0, log.Err("failed to buffer COPY row", err, "runID", runID, "row", rowNumber+1)
		}
	}

	if _, err := stmt.Exec(); err != nil {
		return 0, log.Err("failed to finalize COPY", err, "runID", runID)
	}

	if err := tx.Commit(); err != nil {
		return 0, log.Err("failed to commit archive transaction", err, "runID", runID)
	}

	log.Info("archived census rows",
		"runID", runID,
		"rows", len(file.Rows),
		"elapsedMs", time.Since(startTime).Milliseconds())

	return len(file.Rows), nil
}

func valueOrNull(value string) interface{} {
	if value != "" {
		return value
	}
	return nil
}
