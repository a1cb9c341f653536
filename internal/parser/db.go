package parser

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"

	"zonegen/internal/model"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Schema creates the policy tables. The statements are valid for both
// MariaDB and SQLite. JSON columns hold string arrays; source and
// destination columns may also hold a single JSON string.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS cfg_zone (
		position INT NOT NULL,
		name VARCHAR(64) NOT NULL,
		description VARCHAR(255) NULL,
		interfaces TEXT NULL,
		is_local TINYINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS cfg_group (
		position INT NOT NULL,
		kind VARCHAR(32) NOT NULL,
		name VARCHAR(64) NOT NULL,
		description VARCHAR(255) NULL,
		members TEXT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cfg_rule (
		position INT NOT NULL,
		source_zones TEXT NOT NULL,
		dest_zones TEXT NOT NULL,
		params TEXT NOT NULL,
		ip_versions TEXT NULL,
		rule_number INT NULL
	)`,
}

// SQLParser loads a policy from the cfg_zone, cfg_group and cfg_rule
// tables of a MariaDB or SQLite database.
type SQLParser struct {
	db *sql.DB

	Policy model.Policy
}

// OpenSQL connects with the given driver ("mysql" or "sqlite").
func OpenSQL(driver, dsn string) (*SQLParser, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return NewSQLParser(db), nil
}

func NewSQLParser(db *sql.DB) *SQLParser {
	return &SQLParser{db: db}
}

func (p *SQLParser) Close() error {
	return p.db.Close()
}

func (p *SQLParser) Parse() error {
	if err := p.loadZones(); err != nil {
		return fmt.Errorf("failed to load zones: %w", err)
	}
	if err := p.loadGroups(); err != nil {
		return fmt.Errorf("failed to load groups: %w", err)
	}
	if err := p.loadRules(); err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	return nil
}

func (p *SQLParser) loadZones() error {
	rows, err := p.db.Query("SELECT name, description, interfaces, is_local FROM cfg_zone ORDER BY position, name")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var zone model.Zone
		var description, interfaces sql.NullString
		if err := rows.Scan(&zone.Name, &description, &interfaces, &zone.Local); err != nil {
			return err
		}
		zone.Description = description.String
		if interfaces.Valid && interfaces.String != "" {
			if err := json.Unmarshal([]byte(interfaces.String), &zone.Interfaces); err != nil {
				return fmt.Errorf("zone %s: interfaces: %w", zone.Name, err)
			}
		}
		p.Policy.Zones = append(p.Policy.Zones, zone)
	}
	return rows.Err()
}

func (p *SQLParser) loadGroups() error {
	rows, err := p.db.Query("SELECT kind, name, description, members FROM cfg_group ORDER BY position, name")
	if err != nil {
		return err
	}
	defer rows.Close()

	byKind := make(map[model.GroupKind][]model.Group)
	for rows.Next() {
		var kindLabel string
		var group model.Group
		var description, members sql.NullString
		if err := rows.Scan(&kindLabel, &group.Name, &description, &members); err != nil {
			return err
		}
		kind, ok := model.ParseGroupKind(kindLabel)
		if !ok {
			return fmt.Errorf("group %s: unknown kind %q", group.Name, kindLabel)
		}
		group.Kind = kind
		group.Description = description.String
		if members.Valid && members.String != "" {
			if err := json.Unmarshal([]byte(members.String), &group.Members); err != nil {
				return fmt.Errorf("group %s: members: %w", group.Name, err)
			}
		}
		byKind[kind] = append(byKind[kind], group)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, kind := range model.GroupKinds {
		p.Policy.Groups = append(p.Policy.Groups, byKind[kind]...)
	}
	return nil
}

func (p *SQLParser) loadRules() error {
	rows, err := p.db.Query("SELECT source_zones, dest_zones, params, ip_versions, rule_number FROM cfg_rule ORDER BY position")
	if err != nil {
		return err
	}
	defer rows.Close()

	all := p.Policy.ZoneNames()
	for i := 0; rows.Next(); i++ {
		var srcJSON, dstJSON, paramsJSON string
		var versionsJSON sql.NullString
		var number sql.NullInt64
		if err := rows.Scan(&srcJSON, &dstJSON, &paramsJSON, &versionsJSON, &number); err != nil {
			return err
		}

		var rule model.Rule
		if rule.Sources, err = jsonStrings(srcJSON, i, "source", true); err != nil {
			return err
		}
		if rule.Destinations, err = jsonStrings(dstJSON, i, "destination", true); err != nil {
			return err
		}
		if rule.Params, err = jsonStrings(paramsJSON, i, "params", false); err != nil {
			return err
		}
		rule.Sources = expandZones(rule.Sources, all)
		rule.Destinations = expandZones(rule.Destinations, all)

		if versionsJSON.Valid && versionsJSON.String != "" {
			var versions []int
			if err := json.Unmarshal([]byte(versionsJSON.String), &versions); err != nil {
				return &model.InputShapeError{Rule: i, Field: "families", Reason: err.Error()}
			}
			if rule.Families, err = toFamilies(i, versions); err != nil {
				return err
			}
		}
		if number.Valid {
			rule.Priority = int(number.Int64)
		}
		p.Policy.Rules = append(p.Policy.Rules, rule)
	}
	return rows.Err()
}

// jsonStrings decodes a JSON array of strings, or a single JSON string when
// allowScalar is set.
func jsonStrings(raw string, idx int, field string, allowScalar bool) ([]string, error) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) > 0 && data[0] == '"' {
		if !allowScalar {
			return nil, scalarParams(idx)
		}
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, &model.InputShapeError{Rule: idx, Field: field, Reason: err.Error()}
		}
		return []string{s}, nil
	}

	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &model.InputShapeError{Rule: idx, Field: field, Reason: "must be a JSON array of strings: " + err.Error()}
	}
	return out, nil
}
