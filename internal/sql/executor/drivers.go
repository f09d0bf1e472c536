package executor

import (
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	// database/sql drivers selectable from the connection config
	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

var driverAliases = map[string]string{
	"postgresql": "postgres",
	"pg":         "postgres",
	"sqlite3":    "sqlite",
	"mariadb":    "mysql",
	"mssql":      "sqlserver",
}

// These drivers hand back only the last result set of a multi-statement
// query (pgx refuses one outright), so scripts are split and each statement
// runs as its own batch. lib/pq, mysql and sqlserver implement
// NextResultSet and get the script in one round trip.
var splitDrivers = map[string]bool{
	"sqlite": true,
	"duckdb": true,
	"pgx":    true,
}

// normalize maps the configured driver name to a registered database/sql
// driver and adjusts the DSN so multi-statement scripts produce one result
// set per statement.
func normalize(driver, dsn string) (string, string, error) {
	name := strings.ToLower(strings.TrimSpace(driver))
	if alias, ok := driverAliases[name]; ok {
		name = alias
	}

	if name == "mysql" {
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", "", fmt.Errorf("executor: mysql dsn: %w", err)
		}
		cfg.MultiStatements = true
		dsn = cfg.FormatDSN()
	}
	return name, dsn, nil
}
