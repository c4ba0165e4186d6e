package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fleetdesk/apiserver/internal/auth"
	"github.com/fleetdesk/apiserver/internal/mq"
	"github.com/fleetdesk/apiserver/internal/permissions"
	"github.com/fleetdesk/apiserver/internal/store"
	"github.com/fleetdesk/apiserver/types"
	"github.com/google/uuid"
)

// TrailerSentinel marks a dependent row in the Machinery column of the
// equipment-tracking resource. A trailer row is linked to its owner
// only by physical adjacency: it is always the next row.
const TrailerSentinel = "Trailer"

const (
	statusCompleted      = "Completed"
	statusRejected       = "Rejected"
	headerCompletionDate = "Completion Date"
	headerHasTrailer     = "Has Trailer"
)

// trailerFields maps submission fields to the columns of the
// synthesized trailer row. Everything else in the trailer row stays
// empty.
var trailerFields = map[string]string{
	"Trailer Type":        "Model Type",
	"Trailer Plate":       headerPlate,
	"Trailer Insurance":   "Insurance",
	"Trailer Inspection":  "Technical Inspection",
	"Trailer Certificate": "Certificate",
	"Trailer Documents":   "Documents",
}

// completionCopy describes where a completed request is archived and
// how its columns translate. Each source resource has its own table.
type completionCopy struct {
	target string
	fields map[string]string // source column -> target column
}

var completionCopies = map[string]completionCopy{
	permissions.ResourceRequestsParts: {
		target: permissions.ResourceRequestsPartsLog,
		fields: map[string]string{
			"Request Date":       "Request Date",
			headerPlate:          headerPlate,
			"Part":               "Part",
			"Quantity":           "Quantity",
			"Requested By":       "Requested By",
			"Handled By":         "Handled By",
			headerCompletionDate: "Completed On",
			headerStatus:         "Outcome",
		},
	},
	permissions.ResourceGreaseOilRequests: {
		target: permissions.ResourceGreaseOilLog,
		fields: map[string]string{
			"Request Date":       "Request Date",
			headerPlate:          headerPlate,
			"Service":            "Service",
			"Requested By":       "Requested By",
			"Handled By":         "Handled By",
			headerCompletionDate: "Completed On",
			headerStatus:         "Outcome",
		},
	},
}

// AddResult reports what an append produced.
type AddResult struct {
	Timestamp string
	Effects   []SideEffect
}

// Engine keeps derived and linked rows consistent around primary
// writes: trailer rows on the equipment tracker, completion copies
// into audit logs, and attachment cleanup on delete. Side-effect
// failures never roll back the completed primary write.
type Engine struct {
	rows        store.RowStore
	mapper      *Mapper
	attachments *Attachments
	events      *mq.MQ
	channel     string
	location    *time.Location
	logger      *slog.Logger
	now         func() time.Time
}

func NewEngine(
	rows store.RowStore,
	mapper *Mapper,
	attachments *Attachments,
	events *mq.MQ,
	channel string,
	location *time.Location,
	logger *slog.Logger,
) *Engine {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		rows:        rows,
		mapper:      mapper,
		attachments: attachments,
		events:      events,
		channel:     channel,
		location:    location,
		logger:      logger,
		now:         time.Now,
	}
}

// List returns every record of a resource with its positional index.
func (e *Engine) List(ctx context.Context, resource string) ([]types.Record, error) {
	headers, err := e.rows.Headers(ctx, resource)
	if err != nil {
		return nil, err
	}
	rows, err := e.rows.Rows(ctx, resource)
	if err != nil {
		return nil, err
	}

	records := make([]types.Record, 0, len(rows))
	for i, fields := range Records(headers, rows) {
		records = append(records, types.Record{RowIndex: i + 1, Fields: fields})
	}
	return records, nil
}

// Add appends a record, synthesizing the dependent trailer row right
// after it when the submission carries a dependent unit.
func (e *Engine) Add(ctx context.Context, resource string, sub Submission) (AddResult, error) {
	effects := e.mapper.Externalize(ctx, resource, sub)

	if err := hashUserPassword(resource, sub); err != nil {
		return AddResult{}, err
	}

	headers, values, err := e.mapper.MapForAppend(ctx, resource, sub)
	if err != nil {
		return AddResult{}, err
	}
	if err := e.rows.Append(ctx, resource, values); err != nil {
		return AddResult{}, err
	}

	if resource == permissions.ResourceSuivi && hasTrailerData(sub) {
		trailer := e.buildTrailerRow(headers, sub)
		if err := e.rows.Append(ctx, resource, trailer); err != nil {
			effects = e.effect(effects, "append trailer row", err)
		}
	}

	effects = e.publish(ctx, effects, resource, "add", 0, recordID(headers, values))

	return AddResult{
		Timestamp: e.now().In(e.location).Format(timestampLayout),
		Effects:   effects,
	}, nil
}

// Edit updates the record at index with a partial submission, then
// runs the derived-row rules: classification re-derivation, the four
// trailer cases, completion stamping and the audit-log copy.
func (e *Engine) Edit(ctx context.Context, resource string, index int, sub Submission) ([]SideEffect, error) {
	headers, err := e.rows.Headers(ctx, resource)
	if err != nil {
		return nil, err
	}
	existing, err := e.rows.Row(ctx, resource, index)
	if err != nil {
		return nil, err
	}

	effects := e.mapper.Externalize(ctx, resource, sub)

	if err := hashUserPassword(resource, sub); err != nil {
		return effects, err
	}

	editingTrailer := resource == permissions.ResourceSuivi &&
		columnValue(headers, existing, headerMachinery) == TrailerSentinel

	if resource == permissions.ResourceSuivi && !editingTrailer {
		oldMachinery := columnValue(headers, existing, headerMachinery)
		if sub.Has(headerMachinery) && !strings.EqualFold(sub.Get(headerMachinery), oldMachinery) && !sub.Has(headerType) {
			classification, classifyErr := e.mapper.Classify(ctx, sub.Get(headerMachinery))
			if classifyErr != nil {
				effects = e.effect(effects, "derive classification", classifyErr)
			} else {
				sub.Set(headerType, classification)
			}
		}
	}

	completion := e.applyCompletion(resource, headers, existing, sub)

	values := e.mapper.MapForUpdate(headers, existing, sub)
	if err := e.rows.Update(ctx, resource, index, values); err != nil {
		return effects, err
	}

	effects = append(effects, e.deleteSuperseded(ctx, headers, existing, sub)...)

	// A trailer row edited directly is a standalone update, no cascading.
	if resource == permissions.ResourceSuivi && !editingTrailer {
		effects = append(effects, e.syncTrailer(ctx, resource, index, headers, sub)...)
	}

	if completion != nil {
		effects = append(effects, e.copyToLog(ctx, *completion, headers, values)...)
		effects = e.publish(ctx, effects, resource, "complete", index, recordID(headers, values))
	}

	effects = e.publish(ctx, effects, resource, "edit", index, recordID(headers, values))
	return effects, nil
}

// Delete removes the record at index, deleting its attachments from
// blob storage first. Attachment failures are reported, never fatal.
func (e *Engine) Delete(ctx context.Context, resource string, index int) ([]SideEffect, error) {
	headers, err := e.rows.Headers(ctx, resource)
	if err != nil {
		return nil, err
	}
	row, err := e.rows.Row(ctx, resource, index)
	if err != nil {
		return nil, err
	}

	var effects []SideEffect
	for i, value := range row {
		if !e.attachments.Owned(value) {
			continue
		}
		if err := e.attachments.Delete(ctx, value); err != nil {
			name := "attachment"
			if i < len(headers) {
				name = headers[i]
			}
			effects = e.effect(effects, "delete "+name, err)
		}
	}

	if err := e.rows.Delete(ctx, resource, index); err != nil {
		return effects, err
	}

	effects = e.publish(ctx, effects, resource, "delete", index, recordID(headers, row))
	return effects, nil
}

// syncTrailer handles the four dependent-row cases after a primary
// update: overwrite, insert, leave untouched, no-op.
func (e *Engine) syncTrailer(ctx context.Context, resource string, index int, headers []string, sub Submission) []SideEffect {
	var effects []SideEffect
	supplied := hasTrailerData(sub)

	next, err := e.rows.Row(ctx, resource, index+1)
	trailerExists := err == nil && columnValue(headers, next, headerMachinery) == TrailerSentinel
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return e.effect(effects, "read trailer row", err)
	}

	switch {
	case trailerExists && supplied:
		updated := e.overwriteTrailerFields(headers, next, sub)
		if err := e.rows.Update(ctx, resource, index+1, updated); err != nil {
			effects = e.effect(effects, "update trailer row", err)
		}
	case !trailerExists && supplied:
		trailer := e.buildTrailerRow(headers, sub)
		if err := e.rows.Insert(ctx, resource, index+1, trailer); err != nil {
			effects = e.effect(effects, "insert trailer row", err)
		}
	}
	return effects
}

// applyCompletion stamps the completion date when a request-style
// record turns terminal, and returns the copy descriptor when the new
// status means completed.
func (e *Engine) applyCompletion(resource string, headers, existing []string, sub Submission) *completionCopy {
	copySpec, ok := completionCopies[resource]
	if !ok || !sub.Has(headerStatus) {
		return nil
	}

	newStatus := strings.TrimSpace(sub.Get(headerStatus))
	terminal := strings.EqualFold(newStatus, statusCompleted) || strings.EqualFold(newStatus, statusRejected)
	if !terminal {
		return nil
	}

	if hasColumn(headers, headerCompletionDate) &&
		strings.TrimSpace(sub.Get(headerCompletionDate)) == "" &&
		strings.TrimSpace(columnValue(headers, existing, headerCompletionDate)) == "" {
		sub.Set(headerCompletionDate, e.now().In(e.location).Format(dateLayout))
	}

	oldStatus := columnValue(headers, existing, headerStatus)
	if strings.EqualFold(newStatus, statusCompleted) && !strings.EqualFold(oldStatus, newStatus) {
		return &copySpec
	}
	return nil
}

// copyToLog appends the remapped record into the audit-log resource.
func (e *Engine) copyToLog(ctx context.Context, copySpec completionCopy, headers, values []string) []SideEffect {
	translated := make(Submission, len(copySpec.fields))
	for source, target := range copySpec.fields {
		translated[target] = columnValue(headers, values, source)
	}

	_, logValues, err := e.mapper.MapForAppend(ctx, copySpec.target, translated)
	if err == nil {
		err = e.rows.Append(ctx, copySpec.target, logValues)
	}
	if err != nil {
		return []SideEffect{{Op: "copy to " + copySpec.target, Detail: err.Error()}}
	}
	return nil
}

// deleteSuperseded removes blobs whose URLs were replaced by the edit.
func (e *Engine) deleteSuperseded(ctx context.Context, headers, existing []string, sub Submission) []SideEffect {
	var effects []SideEffect
	for i, header := range headers {
		if !sub.Has(header) || i >= len(existing) {
			continue
		}
		old := existing[i]
		if old == "" || old == sub.Get(header) || !e.attachments.Owned(old) {
			continue
		}
		if err := e.attachments.Delete(ctx, old); err != nil {
			effects = e.effect(effects, "delete superseded "+header, err)
		}
	}
	return effects
}

func (e *Engine) buildTrailerRow(headers []string, sub Submission) []string {
	values := make([]string, len(headers))
	for i, header := range headers {
		switch {
		case strings.EqualFold(header, headerMachinery):
			values[i] = TrailerSentinel
		case strings.EqualFold(header, headerID):
			values[i] = uuid.NewString()
		default:
			for source, target := range trailerFields {
				if strings.EqualFold(header, target) {
					values[i] = sub.Get(source)
					break
				}
			}
		}
	}
	return values
}

func (e *Engine) overwriteTrailerFields(headers, trailer []string, sub Submission) []string {
	values := make([]string, len(headers))
	copy(values, trailer)
	for source, target := range trailerFields {
		if !sub.Has(source) {
			continue
		}
		for i, header := range headers {
			if strings.EqualFold(header, target) {
				values[i] = sub.Get(source)
				break
			}
		}
	}
	return values
}

// publish emits a record-change event when a broker is configured.
func (e *Engine) publish(ctx context.Context, effects []SideEffect, resource, action string, index int, id string) []SideEffect {
	if e.events == nil {
		return effects
	}
	event := types.RecordEvent{
		Resource:  resource,
		Action:    action,
		RowIndex:  index,
		RecordID:  id,
		Timestamp: e.now().In(e.location),
	}
	data, err := json.Marshal(event)
	if err == nil {
		_, err = e.events.Publish(ctx, e.channel, data, map[string]string{
			"resource": resource,
			"action":   action,
		})
	}
	if err != nil {
		effects = e.effect(effects, "publish "+action+" event", err)
	}
	return effects
}

func (e *Engine) effect(effects []SideEffect, op string, err error) []SideEffect {
	e.logger.Warn("side effect failed", "op", op, "error", err)
	return append(effects, SideEffect{Op: op, Detail: err.Error()})
}

// hashUserPassword replaces a submitted plaintext password with its
// bcrypt hash before it reaches the sheet. Rows written through this
// API never store plaintext credentials.
func hashUserPassword(resource string, sub Submission) error {
	if resource != permissions.ResourceUsers {
		return nil
	}
	password := strings.TrimSpace(sub.Get(headerPassword))
	if password == "" {
		return nil
	}
	hashed, err := auth.EnsureHashed(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	sub.Set(headerPassword, hashed)
	return nil
}

func hasTrailerData(sub Submission) bool {
	if truthy(sub.Get(headerHasTrailer)) {
		return true
	}
	return strings.TrimSpace(sub.Get("Trailer Type")) != "" &&
		strings.TrimSpace(sub.Get("Trailer Plate")) != ""
}

func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "oui":
		return true
	}
	return false
}

func hasColumn(headers []string, name string) bool {
	for _, header := range headers {
		if strings.EqualFold(strings.TrimSpace(header), name) {
			return true
		}
	}
	return false
}

func columnValue(headers, row []string, name string) string {
	for i, header := range headers {
		if strings.EqualFold(strings.TrimSpace(header), name) {
			if i < len(row) {
				return row[i]
			}
			return ""
		}
	}
	return ""
}

func recordID(headers, row []string) string {
	return columnValue(headers, row, headerID)
}
