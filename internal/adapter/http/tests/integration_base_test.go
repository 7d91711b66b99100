//go:build integration
// +build integration

package tests

import (
	"fmt"
	"os"
	"strings"
	"testing"

	dbadapter "sailclub/internal/adapter/db"
	"sailclub/internal/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type IntegrationSuiteBase struct {
	suite.Suite

	adminDB    *sqlx.DB
	DB         *sqlx.DB
	testDBName string
}

func (s *IntegrationSuiteBase) SetupSuite() {
	host := envOrDefault("MYSQL_HOST", "127.0.0.1")
	port := envOrDefault("MYSQL_PORT", "3306")
	rootUser := envOrDefault("MYSQL_ROOT_USER", "root")
	rootPassword := envOrDefault("MYSQL_ROOT_PASSWORD", "root")
	database := envOrDefault("MYSQL_TEST_DATABASE", envOrDefault("MYSQL_DATABASE", "sailclub")+"_test")
	conf := &config.Config{DbUser: rootUser, DbPassword: rootPassword, DbHost: host, DbPort: port}

	adminDB, err := sqlx.Connect("mysql", dbadapter.DSN(conf))
	if err != nil {
		s.T().Skipf("skipping integration suite: could not connect to mysql: %v", err)
	}
	s.adminDB = adminDB

	_, err = s.adminDB.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", database))
	s.Require().NoError(err)

	conf.DbName = database
	db, err := sqlx.Connect("mysql", dbadapter.DSN(conf))
	s.Require().NoError(err)
	s.DB = db
	s.testDBName = database
}

func (s *IntegrationSuiteBase) TearDownSuite() {
	if s.DB != nil {
		s.Require().NoError(s.DB.Close())
	}

	if s.adminDB != nil && s.testDBName != "" && strings.HasSuffix(s.testDBName, "_test") {
		_, err := s.adminDB.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS `%s`", s.testDBName))
		s.Require().NoError(err)
	}

	if s.adminDB != nil {
		s.Require().NoError(s.adminDB.Close())
	}
}

func (s *IntegrationSuiteBase) ResetDatabase() {
	applyTestMigrations(s.T(), s.DB)
}

func applyTestMigrations(t *testing.T, db *sqlx.DB) {
	t.Helper()

	_, err := db.Exec(`
SET FOREIGN_KEY_CHECKS = 0;
DROP TABLE IF EXISTS helper_task_audit_log, helper_task_helpers, helper_tasks, helper_task_categories;
DROP TABLE IF EXISTS member_licences, licences, member_roles, members, schema_migrations;
SET FOREIGN_KEY_CHECKS = 1;
`)
	require.NoError(t, err)
	require.NoError(t, dbadapter.MigrateUp(db))

	_, err = db.Exec(`
INSERT INTO members (id, first_name, last_name, email, language) VALUES
  (1, 'Ada', 'Admin', 'ada@example.org', 'en'),
  (2, 'Elsa', 'Editor', 'elsa@example.org', 'fr'),
  (3, 'Chris', 'Captain', 'chris@example.org', 'en'),
  (4, 'Hana', 'Helper', 'hana@example.org', 'en'),
  (5, 'Hugo', 'Helper', 'hugo@example.org', 'en'),
  (6, 'Ines', 'Idle', 'ines@example.org', 'en');
INSERT INTO member_roles (member_id, role) VALUES (1, 'admin'), (2, 'editor');
INSERT INTO licences (id, code, name) VALUES (1, 'M', 'Motorboat licence');
INSERT INTO member_licences (member_id, licence_id, status) VALUES (3, 1, 'active'), (4, 1, 'expired');
INSERT INTO helper_task_categories (id, title, short_description) VALUES (1, 'Harbour', 'Harbour work');
`)
	require.NoError(t, err)
}

func envOrDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
