package testdata

import (
	"fmt"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/skuid/aliasql/metadata"
)

// Config is a sample struct that would go in a jsonb field
type Config struct {
	ConfigA string `json:"config_a"`
	ConfigB string `json:"config_b"`
}

// TestObject sample object for tests
type TestObject struct {
	Metadata metadata.Metadata `aliasql:"tablename=testobject"`

	ID          int       `json:"id" aliasql:"primary_key,column=id"`
	Name        string    `json:"name" aliasql:"column=name" validate:"required"`
	Type        string    `json:"type" aliasql:"column=type"`
	IsActive    bool      `json:"is_active" aliasql:"column=is_active"`
	Rating      float64   `json:"rating" aliasql:"column=rating,type=DECIMAL(4,2)"`
	Nickname    *string   `json:"nickname" aliasql:"column=nickname"`
	Config      Config    `json:"config" aliasql:"jsonb,column=config"`
	CreatedDate time.Time `json:"created_at" aliasql:"column=created_at"`
	Scratch     string    `json:"scratch"`
}

// SimpleObject has no table name, so it is stored as simple_object
type SimpleObject struct {
	Metadata metadata.Metadata

	Key   string `aliasql:"primary_key,column=key"`
	Value int    `aliasql:"column=value"`
}

// NotAModel is a plain struct with no mapped fields
type NotAModel struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// StrPtr returns a pointer to s, for nullable fields
func StrPtr(s string) *string {
	return &s
}

// FmtSQL collapses a heredoc SQL statement onto a single line
func FmtSQL(sql string) string {
	str := strings.Replace(heredoc.Doc(sql), "\n", " ", -1)
	str = strings.Replace(str, "\t", "", -1)
	return strings.Trim(str, " ")
}

//FmtSQLRegex will covert a multiline/heredoc SQL statement into a REGEX version,
// which is useful for testing mock SQL calls. This allows the user to write out
// the SQL without worrying about tabs, newlines, and escaping characters like
// ., $, ?, *, (, ). It also adds the ^ at the beginning.
func FmtSQLRegex(sql string) string {
	str := FmtSQL(sql)
	str = strings.Replace(str, ".", "\\.", -1)
	str = strings.Replace(str, "$", "\\$", -1)
	str = strings.Replace(str, "?", "\\?", -1)
	str = strings.Replace(str, "*", "\\*", -1)
	str = strings.Replace(str, "(", "\\(", -1)
	str = strings.Replace(str, ")", "\\)", -1)
	return fmt.Sprintf("^%s$", str)
}
