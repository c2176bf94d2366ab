package sweep

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// SQL dialects understood by SQLWriter.
const (
	DialectSQLite = "sqlite3"
	DialectMySQL  = "mysql"
)

const (
	sqlCountInfo = 100

	sqliteCreateTableTmpl = `CREATE TABLE IF NOT EXISTS sweep_points (
		"ID"                     INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
		"SweepID"                TEXT NOT NULL,
		"PointIndex"             INTEGER NOT NULL,
		"Axis"                   TEXT NOT NULL,
		"Organ"                  TEXT,
		"Threshold"              REAL,
		"RxX"                    REAL,
		"RxY"                    REAL,
		"TxRxDistance"           REAL,
		"RxJamDistance"          REAL,
		"ScanCoordinate"         REAL,
		"BodyLossDb"             REAL,
		"BodyRxPowerDbm"         REAL,
		"JamRxPowerDbm"          REAL,
		"JamLossDb"              REAL,
		"NoJamSuccessRate"       REAL,
		"JamSuccessRate"         REAL,
		"IsJammed"               INTEGER,
		"NoJamPacketsRx"         INTEGER,
		"JamPacketsRx"           INTEGER,
		"JamPacketsFromJammerRx" INTEGER,
		"UnixMilli"              INTEGER
	);`
	mysqlCreateTableTmpl = `CREATE TABLE IF NOT EXISTS sweep_points (
		ID                     BIGINT NOT NULL PRIMARY KEY AUTO_INCREMENT,
		SweepID                VARCHAR(64) NOT NULL,
		PointIndex             INT NOT NULL,
		Axis                   VARCHAR(8) NOT NULL,
		Organ                  VARCHAR(64),
		Threshold              DOUBLE,
		RxX                    DOUBLE,
		RxY                    DOUBLE,
		TxRxDistance           DOUBLE,
		RxJamDistance          DOUBLE,
		ScanCoordinate         DOUBLE,
		BodyLossDb             DOUBLE,
		BodyRxPowerDbm         DOUBLE,
		JamRxPowerDbm          DOUBLE,
		JamLossDb              DOUBLE,
		NoJamSuccessRate       DOUBLE,
		JamSuccessRate         DOUBLE,
		IsJammed               TINYINT,
		NoJamPacketsRx         INT UNSIGNED,
		JamPacketsRx           INT UNSIGNED,
		JamPacketsFromJammerRx INT UNSIGNED,
		UnixMilli              BIGINT
	);`
	sqlInsertPointTmpl = `INSERT INTO sweep_points (
		SweepID,
		PointIndex,
		Axis,
		Organ,
		Threshold,
		RxX,
		RxY,
		TxRxDistance,
		RxJamDistance,
		ScanCoordinate,
		BodyLossDb,
		BodyRxPowerDbm,
		JamRxPowerDbm,
		JamLossDb,
		NoJamSuccessRate,
		JamSuccessRate,
		IsJammed,
		NoJamPacketsRx,
		JamPacketsRx,
		JamPacketsFromJammerRx,
		UnixMilli
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`
)

// SQLWriter stores records in a sweep_points table of a SQLite or MySQL database.
type SQLWriter struct {
	DB      *sql.DB
	dialect string
	insert  *sql.Stmt
	ownsDB  bool
	counts  map[string]int
	log     *slog.Logger
}

// OpenSQLWriter opens dsn with the given driver and prepares the table.
func OpenSQLWriter(ctx context.Context, dialect, dsn string, log *slog.Logger) (*SQLWriter, error) {
	db, err := sql.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}
	w, err := NewSQLWriter(ctx, db, dialect, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	w.ownsDB = true
	return w, nil
}

// NewSQLWriter creates the table on db if needed.
func NewSQLWriter(ctx context.Context, db *sql.DB, dialect string, log *slog.Logger) (*SQLWriter, error) {
	var ddl string
	switch dialect {
	case DialectSQLite:
		ddl = sqliteCreateTableTmpl
	case DialectMySQL:
		ddl = mysqlCreateTableTmpl
	default:
		return nil, fmt.Errorf("unsupported SQL dialect %q", dialect)
	}
	if log == nil {
		log = slog.Default()
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("unable to create table: %w", err)
	}
	stmt, err := db.PrepareContext(ctx, sqlInsertPointTmpl)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	return &SQLWriter{
		DB:      db,
		dialect: dialect,
		insert:  stmt,
		counts:  map[string]int{"error": 0, "success": 0, "total": 0},
		log:     log.With("sink", "sql", "dialect", dialect),
	}, nil
}

// WriteRecord implements Writer.
func (w *SQLWriter) WriteRecord(r Record) error {
	w.counts["total"]++
	jammed := 0
	if r.IsJammed {
		jammed = 1
	}
	_, err := w.insert.Exec(
		r.SweepID, r.Index, r.Axis.String(), r.Organ, r.Threshold,
		r.RxX, r.RxY, r.TxRxDistance, r.RxJamDistance, r.ScanCoordinate,
		r.BodyLossDb, r.BodyRxPowerDbm, r.JamRxPowerDbm, r.JamLossDb,
		r.NoJamSuccessRate, r.JamSuccessRate, jammed,
		r.NoJamPacketsRx, r.JamPacketsRx, r.JamPacketsFromJammerRx,
		r.Timestamp.UnixMilli(),
	)
	if err != nil {
		w.counts["error"]++
		w.log.Warn("error storing sweep point", "index", r.Index, "error", err)
		return err
	}
	w.counts["success"]++
	if w.counts["total"]%sqlCountInfo == 0 {
		w.log.Info("sweep point export counts", "counts", w.counts)
	}
	return nil
}

// WriteRecords inserts rows in one transaction.
func (w *SQLWriter) WriteRecords(rows []Record) error {
	tx, err := w.DB.Begin()
	if err != nil {
		return err
	}
	stmt := w.insert
	w.insert = tx.Stmt(stmt)
	defer func() { w.insert = stmt }()
	for _, r := range rows {
		if err := w.WriteRecord(r); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Close releases the statement and, when opened by OpenSQLWriter, the database.
func (w *SQLWriter) Close() error {
	err := w.insert.Close()
	if w.ownsDB {
		if e := w.DB.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
