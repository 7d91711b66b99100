package db

import (
	"fmt"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"sailclub/internal/config"
)

// DSN builds the driver connection string. Migrations and the integration
// fixtures send several statements at once, so multiStatements stays on.
func DSN(conf *config.Config) string {
	dsn := mysql.NewConfig()
	dsn.User = conf.DbUser
	dsn.Passwd = conf.DbPassword
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(conf.DbHost, conf.DbPort)
	dsn.DBName = conf.DbName
	dsn.ParseTime = true
	dsn.MultiStatements = true
	dsn.Loc = time.UTC
	return dsn.FormatDSN()
}

func ConnectDB(conf *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("mysql", DSN(conf))
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", conf.DbHost, err)
	}

	db.SetMaxOpenConns(conf.DbMaxOpenConns)
	db.SetMaxIdleConns(conf.DbMaxOpenConns)
	db.SetConnMaxLifetime(conf.DbConnMaxLifetime)
	return db, nil
}
