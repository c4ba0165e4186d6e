package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fleetdesk/apiserver/internal/permissions"
	"github.com/fleetdesk/apiserver/internal/store"
	"github.com/google/uuid"
)

const (
	// Sheet values use day-first dates, matching what the forms submit.
	dateLayout      = "02/01/2006"
	timestampLayout = "02/01/2006 15:04"

	headerID        = "ID"
	headerType      = "Type"
	headerMachinery = "Machinery"
	headerStatus    = "Status"
	headerPlate     = "Plate Number"
	headerPassword  = "Password"
)

// timestampColumns are filled with the current time when the caller
// leaves them empty on add. Matching is case-insensitive.
var timestampColumns = map[string]bool{
	"date":         true,
	"request date": true,
	"timestamp":    true,
}

// Submission is a submitted field mapping with trimmed keys. Values
// are looked up case-insensitively: the boundary normalizes field
// names once so business logic never sees "username"/"Username" splits.
type Submission map[string]string

// NewSubmission builds a Submission from a decoded JSON body.
func NewSubmission(raw map[string]any) Submission {
	sub := make(Submission, len(raw))
	for key, value := range raw {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		switch typed := value.(type) {
		case string:
			sub[key] = typed
		case nil:
			sub[key] = ""
		default:
			sub[key] = fmt.Sprint(typed)
		}
	}
	return sub
}

// Get returns the value for a field name, matched case-insensitively.
func (s Submission) Get(name string) string {
	if v, ok := s[name]; ok {
		return v
	}
	lower := strings.ToLower(name)
	for key, value := range s {
		if strings.ToLower(key) == lower {
			return value
		}
	}
	return ""
}

// Has reports whether the field was submitted at all, even as "".
func (s Submission) Has(name string) bool {
	if _, ok := s[name]; ok {
		return true
	}
	lower := strings.ToLower(name)
	for key := range s {
		if strings.ToLower(key) == lower {
			return true
		}
	}
	return false
}

// Set stores a value under the submitted spelling of name when one
// exists, otherwise under name itself.
func (s Submission) Set(name, value string) {
	lower := strings.ToLower(name)
	for key := range s {
		if strings.ToLower(key) == lower {
			s[key] = value
			return
		}
	}
	s[name] = value
}

// Mapper translates submissions into the column layout of a resource,
// applying attachment externalization, timestamp defaults and derived
// classification along the way.
type Mapper struct {
	rows        store.RowStore
	attachments *Attachments
	location    *time.Location
	now         func() time.Time
}

func NewMapper(rows store.RowStore, attachments *Attachments, location *time.Location) *Mapper {
	if location == nil {
		location = time.UTC
	}
	return &Mapper{
		rows:        rows,
		attachments: attachments,
		location:    location,
		now:         time.Now,
	}
}

// Externalize replaces every data-URI valued field with the URL of the
// uploaded blob. Upload failures blank the field and are returned as
// side effects rather than aborting the whole submission.
func (m *Mapper) Externalize(ctx context.Context, resource string, sub Submission) []SideEffect {
	var effects []SideEffect
	hint := sub.Get(headerPlate)
	for field, value := range sub {
		if !IsDataURI(value) {
			continue
		}
		url, err := m.attachments.Upload(ctx, resource, field, hint, value)
		if err != nil {
			effects = append(effects, SideEffect{
				Op:     "upload " + field,
				Detail: err.Error(),
			})
			sub[field] = ""
			continue
		}
		sub[field] = url
	}
	return effects
}

// MapForAppend produces the positional value list for a new record:
// canonicalized against the live header row, with timestamp columns
// defaulted, the Suivi classification derived, and a UUID filled into
// an ID column when one exists. Columns absent from the submission
// default to ""; submitted fields absent from the header are dropped.
func (m *Mapper) MapForAppend(ctx context.Context, resource string, sub Submission) ([]string, []string, error) {
	headers, err := m.rows.Headers(ctx, resource)
	if err != nil {
		return nil, nil, err
	}
	if len(headers) == 0 {
		return nil, nil, fmt.Errorf("resource %s has no header row", resource)
	}

	if resource == permissions.ResourceSuivi && !sub.Has(headerType) {
		classification, err := m.Classify(ctx, sub.Get(headerMachinery))
		if err == nil {
			sub.Set(headerType, classification)
		}
	}

	values := make([]string, len(headers))
	for i, header := range headers {
		value := sub.Get(header)
		name := strings.ToLower(strings.TrimSpace(header))
		switch {
		case value == "" && timestampColumns[name]:
			value = m.now().In(m.location).Format(timestampLayout)
		case value == "" && strings.EqualFold(header, headerID):
			value = uuid.NewString()
		}
		values[i] = value
	}
	return headers, values, nil
}

// MapForUpdate merges a partial submission over an existing row,
// header-aligned. Untouched columns keep their current values.
func (m *Mapper) MapForUpdate(headers, existing []string, sub Submission) []string {
	values := make([]string, len(headers))
	for i, header := range headers {
		if i < len(existing) {
			values[i] = existing[i]
		}
		if sub.Has(header) {
			values[i] = sub.Get(header)
		}
	}
	return values
}

// Classify derives the secondary classification for a free-text
// machinery category from the MachineryTypes resource. Unknown
// categories yield "" without error.
func (m *Mapper) Classify(ctx context.Context, machinery string) (string, error) {
	machinery = strings.ToLower(strings.TrimSpace(machinery))
	if machinery == "" {
		return "", nil
	}

	headers, err := m.rows.Headers(ctx, permissions.ResourceMachineryTypes)
	if err != nil {
		return "", err
	}
	rows, err := m.rows.Rows(ctx, permissions.ResourceMachineryTypes)
	if err != nil {
		return "", err
	}

	machineryCol, typeCol := -1, -1
	for i, header := range headers {
		switch strings.ToLower(strings.TrimSpace(header)) {
		case "machinery":
			machineryCol = i
		case "type":
			typeCol = i
		}
	}
	if machineryCol < 0 || typeCol < 0 {
		return "", nil
	}

	for _, row := range rows {
		if machineryCol < len(row) && strings.ToLower(strings.TrimSpace(row[machineryCol])) == machinery {
			if typeCol < len(row) {
				return row[typeCol], nil
			}
			return "", nil
		}
	}
	return "", nil
}

// Records joins headers and data rows into positional records.
func Records(headers []string, rows [][]string) []map[string]string {
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		fields := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(row) {
				fields[header] = row[i]
			} else {
				fields[header] = ""
			}
		}
		out = append(out, fields)
	}
	return out
}
