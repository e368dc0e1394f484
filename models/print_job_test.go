package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string    { return &s }

func TestPrintJobUpdateTracksPresentKeys(t *testing.T) {
	var update PrintJobUpdate
	err := json.Unmarshal([]byte(`{"name":"Benchy v2","notes":null}`), &update)
	require.NoError(t, err)

	assert.True(t, update.Name.Set)
	assert.True(t, update.Name.Valid)
	assert.Equal(t, "Benchy v2", update.Name.Value)

	assert.True(t, update.Notes.Set)
	assert.False(t, update.Notes.Valid)

	assert.False(t, update.WeightUsed.Set)
	assert.False(t, update.Cost.Set)
	assert.False(t, update.SpoolID.Set)
}

func TestPrintJobUpdateApplyToOnlyChangesPresentFields(t *testing.T) {
	job := PrintJob{
		ID:         3,
		SpoolID:    1,
		Name:       "Benchy",
		WeightUsed: 15.5,
		Cost:       floatPtr(3.1),
		Notes:      strPtr("first try"),
	}

	var update PrintJobUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"weight_used":20,"notes":null}`), &update))
	update.ApplyTo(&job)

	assert.Equal(t, "Benchy", job.Name)
	assert.Equal(t, 20.0, job.WeightUsed)
	assert.Nil(t, job.Notes)
	require.NotNil(t, job.Cost)
	assert.Equal(t, 3.1, *job.Cost)
	assert.Equal(t, 1, job.SpoolID)
}

func TestPrintJobUpdateApplyToNormalizesTimes(t *testing.T) {
	var update PrintJobUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"started_at":"2026-02-15T17:29:00+02:00"}`), &update))

	var job PrintJob
	update.ApplyTo(&job)

	require.NotNil(t, job.StartedAt)
	assert.Equal(t, time.UTC, job.StartedAt.Location())
	assert.Equal(t, time.Date(2026, 2, 15, 15, 29, 0, 0, time.UTC), *job.StartedAt)
}

func TestPrintJobUpdateApplyToDropsStaleSpool(t *testing.T) {
	job := PrintJob{SpoolID: 1, Spool: &Spool{ID: 1}}
	PrintJobUpdate{SpoolID: Some(2)}.ApplyTo(&job)

	assert.Equal(t, 2, job.SpoolID)
	assert.Nil(t, job.Spool)
}

func TestPrintJobUpdateValidate(t *testing.T) {
	testCases := []struct {
		name   string
		body   string
		fields []string
	}{
		{name: "empty", body: `{}`},
		{name: "valid", body: `{"name":"ok","cost":0,"notes":null}`},
		{name: "null name", body: `{"name":null}`, fields: []string{"name"}},
		{name: "null spool", body: `{"spool_id":null}`, fields: []string{"spool_id"}},
		{name: "negative weight", body: `{"weight_used":-1}`, fields: []string{"weight_used"}},
		{name: "negative money", body: `{"cost":-1,"revenue":-2}`, fields: []string{"cost", "revenue"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var update PrintJobUpdate
			require.NoError(t, json.Unmarshal([]byte(tc.body), &update))

			err := update.Validate()
			if len(tc.fields) == 0 {
				assert.NoError(t, err)
				return
			}

			var fieldErrs FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			var got []string
			for _, fe := range fieldErrs {
				got = append(got, fe.Field)
			}
			assert.Equal(t, tc.fields, got)
		})
	}
}

func TestPrintJobUpdateValidateLengths(t *testing.T) {
	long := make([]byte, MaxPrintJobNotesLength+1)
	for i := range long {
		long[i] = 'x'
	}
	update := PrintJobUpdate{
		Name:              Some(string(long[:MaxPrintJobNameLength+1])),
		Notes:             Some(string(long)),
		ExternalReference: Some(string(long[:MaxPrintJobExternalReferenceLength])),
	}

	err := update.Validate()
	var fieldErrs FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 2)
	assert.Contains(t, err.Error(), "name: must be at most 128 characters")
	assert.Contains(t, err.Error(), "notes: must be at most 1024 characters")
}

func TestPrintJobOmitsNullFields(t *testing.T) {
	job := PrintJob{ID: 1, SpoolID: 2, Name: "Benchy", WeightUsed: 1}
	data, err := json.Marshal(job)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.NotContains(t, fields, "cost")
	assert.NotContains(t, fields, "notes")
	assert.NotContains(t, fields, "spool")
	assert.Equal(t, "Benchy", fields["name"])
}

func TestSpoolPricePerGram(t *testing.T) {
	testCases := []struct {
		name  string
		spool Spool
		want  float64
		ok    bool
	}{
		{
			name:  "spool price",
			spool: Spool{Price: floatPtr(20), InitialWeight: floatPtr(100)},
			want:  0.2,
			ok:    true,
		},
		{
			name: "filament fallback",
			spool: Spool{
				Price:    floatPtr(20),
				Filament: &Filament{Price: floatPtr(25), Weight: floatPtr(1000)},
			},
			want: 0.025,
			ok:   true,
		},
		{
			name:  "zero initial weight",
			spool: Spool{Price: floatPtr(20), InitialWeight: floatPtr(0), Filament: &Filament{}},
		},
		{
			name:  "nothing known",
			spool: Spool{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.spool.PricePerGram()
			assert.Equal(t, tc.ok, ok)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestOptionalMarshal(t *testing.T) {
	data, err := json.Marshal(struct {
		A Optional[int] `json:"a"`
		B Optional[int] `json:"b"`
	}{A: Some(4), B: Null[int]()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":4,"b":null}`, string(data))
}

func TestNewChangeEvent(t *testing.T) {
	before := time.Now().UTC()
	event := NewChangeEvent(EventUpdated, PrintJobResource, PrintJob{ID: 5})

	assert.Equal(t, EventUpdated, event.Type)
	assert.Equal(t, "print_job", event.Resource)
	assert.False(t, event.Date.Before(before))

	data, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"updated"`)
	assert.Contains(t, string(data), `"resource":"print_job"`)
}

func TestParseTimestamp(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  time.Time
	}{
		{"offset", "2026-02-15T17:29:00+02:00", time.Date(2026, 2, 15, 15, 29, 0, 0, time.UTC)},
		{"zulu fraction", "2026-02-15T17:29:00.250Z", time.Date(2026, 2, 15, 17, 29, 0, 250000000, time.UTC)},
		{"naive", "2026-02-15T17:29:00", time.Date(2026, 2, 15, 17, 29, 0, 0, time.UTC)},
		{"naive minutes", "2026-02-15T17:29", time.Date(2026, 2, 15, 17, 29, 0, 0, time.UTC)},
		{"space separated", "2026-02-15 17:29:00.5", time.Date(2026, 2, 15, 17, 29, 0, 500000000, time.UTC)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTimestamp(tc.value)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got.Time), "got %s", got.Time)
		})
	}

	_, err := ParseTimestamp("15/02/2026")
	assert.Error(t, err)
}

func TestPrintJobUpdateApplyToTreatsNaiveTimesAsUTC(t *testing.T) {
	var update PrintJobUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"completed_at":"2026-02-15T17:29:00","started_at":null}`), &update))

	started := time.Now()
	job := PrintJob{StartedAt: &started}
	update.ApplyTo(&job)

	assert.Nil(t, job.StartedAt)
	require.NotNil(t, job.CompletedAt)
	assert.Equal(t, time.UTC, job.CompletedAt.Location())
	assert.Equal(t, time.Date(2026, 2, 15, 17, 29, 0, 0, time.UTC), *job.CompletedAt)
}

func TestTimestampRejectsNonStrings(t *testing.T) {
	var params PrintJobParameters
	err := json.Unmarshal([]byte(`{"started_at":12}`), &params)

	var typeErr *json.UnmarshalTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "started_at", typeErr.Field)
}
