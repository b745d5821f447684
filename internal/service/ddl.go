package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/m-mizutani/lakefront/pkg/models"
	"github.com/pkg/errors"
)

// ErrInvalidDDL is returned when a name or value can not be embedded in DDL safely
var ErrInvalidDDL = errors.New("Invalid DDL parameter")

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	columnTypePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_ ,:<>()]*$`)
)

func tableName(database, table string) (string, error) {
	if !identifierPattern.MatchString(table) {
		return "", errors.Wrapf(ErrInvalidDDL, "table name: %q", table)
	}
	if database == "" {
		return table, nil
	}
	if !identifierPattern.MatchString(database) {
		return "", errors.Wrapf(ErrInvalidDDL, "database name: %q", database)
	}
	return database + "." + table, nil
}

func quote(s string) (string, error) {
	if strings.ContainsAny(s, "'\\\n") {
		return "", errors.Wrapf(ErrInvalidDDL, "value: %q", s)
	}
	return "'" + s + "'", nil
}

// AddPartitionQuery builds ALTER TABLE ... ADD IF NOT EXISTS PARTITION query.
// Partition keys are sorted by name.
func AddPartitionQuery(database, table string, keys map[string]string, location string) (string, error) {
	name, err := tableName(database, table)
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", errors.Wrap(ErrInvalidDDL, "no partition key")
	}

	var names []string
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)

	var parts []string
	for _, k := range names {
		if !identifierPattern.MatchString(k) {
			return "", errors.Wrapf(ErrInvalidDDL, "partition key: %q", k)
		}
		v, err := quote(keys[k])
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("%s=%s", k, v))
	}

	loc, err := quote(location)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("ALTER TABLE %s ADD IF NOT EXISTS PARTITION (%s) LOCATION %s",
		name, strings.Join(parts, ", "), loc), nil
}

// AddColumnsQuery builds ALTER TABLE ... ADD COLUMNS query
func AddColumnsQuery(database, table string, columns []models.Column) (string, error) {
	name, err := tableName(database, table)
	if err != nil {
		return "", err
	}
	if len(columns) == 0 {
		return "", errors.Wrap(ErrInvalidDDL, "no column")
	}

	var defs []string
	for _, c := range columns {
		if !identifierPattern.MatchString(c.Name) {
			return "", errors.Wrapf(ErrInvalidDDL, "column name: %q", c.Name)
		}
		if !columnTypePattern.MatchString(c.Type) {
			return "", errors.Wrapf(ErrInvalidDDL, "column type: %q", c.Type)
		}
		defs = append(defs, c.Name+" "+c.Type)
	}

	return fmt.Sprintf("ALTER TABLE %s ADD COLUMNS (%s)", name, strings.Join(defs, ", ")), nil
}

// ValidIdentifier returns true if s can be used as a database, table or column name
func ValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}
