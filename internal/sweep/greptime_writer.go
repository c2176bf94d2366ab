package sweep

import (
	"context"
	"log/slog"
	"net"
	"strconv"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
)

// DefaultGreptimeTable is used when no table name is configured.
const DefaultGreptimeTable = "wban_sweep_points"

// greptimeClient is the subset of the ingester client used by the writer.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes sweep records to GreptimeDB via the ingester client.
type GreptimeDBWriter struct {
	client greptimeClient
	table  string
	log    *slog.Logger
}

// NewGreptimeDBWriter connects to endpoint ("host" or "host:port").
func NewGreptimeDBWriter(endpoint, database, tableName string, log *slog.Logger) (*GreptimeDBWriter, error) {
	host, port := endpoint, 0
	if h, p, err := net.SplitHostPort(endpoint); err == nil {
		if n, err := strconv.Atoi(p); err == nil {
			host, port = h, n
		}
	}
	cfg := greptime.NewConfig(host).WithDatabase(database)
	if port > 0 {
		cfg = cfg.WithPort(port)
	}
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if tableName == "" {
		tableName = DefaultGreptimeTable
	}
	if log == nil {
		log = slog.Default()
	}
	return &GreptimeDBWriter{client: client, table: tableName, log: log.With("sink", "greptimedb")}, nil
}

// WriteRecord inserts a single record.
func (w *GreptimeDBWriter) WriteRecord(r Record) error {
	return w.WriteRecords([]Record{r})
}

// WriteRecords inserts multiple records in one request.
func (w *GreptimeDBWriter) WriteRecords(rows []Record) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := w.buildTable(rows)
	if err != nil {
		return err
	}
	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		w.log.Error("write failed", "error", err)
		return err
	}
	w.log.Debug("wrote rows", "rows", len(rows))
	return nil
}

func (w *GreptimeDBWriter) buildTable(rows []Record) (*table.Table, error) {
	tbl, err := table.New(w.table)
	if err != nil {
		return nil, err
	}
	tags := []string{"sweep_id", "axis", "organ"}
	for _, c := range tags {
		if err := tbl.AddTagColumn(c, types.STRING); err != nil {
			return nil, err
		}
	}
	fields := []struct {
		name string
		typ  types.ColumnType
	}{
		{"point_index", types.INT64},
		{"threshold", types.FLOAT64},
		{"rx_x", types.FLOAT64},
		{"rx_y", types.FLOAT64},
		{"tx_rx_distance", types.FLOAT64},
		{"rx_jam_distance", types.FLOAT64},
		{"scan_coordinate", types.FLOAT64},
		{"body_loss_db", types.FLOAT64},
		{"body_rx_power_dbm", types.FLOAT64},
		{"jam_rx_power_dbm", types.FLOAT64},
		{"jam_loss_db", types.FLOAT64},
		{"no_jam_success_rate", types.FLOAT64},
		{"jam_success_rate", types.FLOAT64},
		{"is_jammed", types.BOOLEAN},
		{"no_jam_packets_rx", types.UINT32},
		{"jam_packets_rx", types.UINT32},
		{"jam_packets_from_jammer_rx", types.UINT32},
	}
	for _, f := range fields {
		if err := tbl.AddFieldColumn(f.name, f.typ); err != nil {
			return nil, err
		}
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := tbl.AddRow(
			r.SweepID, r.Axis.String(), r.Organ,
			int64(r.Index), r.Threshold,
			r.RxX, r.RxY, r.TxRxDistance, r.RxJamDistance, r.ScanCoordinate,
			r.BodyLossDb, r.BodyRxPowerDbm, r.JamRxPowerDbm, r.JamLossDb,
			r.NoJamSuccessRate, r.JamSuccessRate, r.IsJammed,
			r.NoJamPacketsRx, r.JamPacketsRx, r.JamPacketsFromJammerRx,
			r.Timestamp,
		); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}
