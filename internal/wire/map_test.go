package wire

import (
	"testing"
	"time"

	"alcyxob/coaching-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func intPtr(v int) *int             { return &v }
func float64Ptr(v float64) *float64 { return &v }

func TestParseID(t *testing.T) {
	id := primitive.NewObjectID()

	parsed, err := ParseID(id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	// Empty stays empty; optional references are not errors.
	parsed, err = ParseID("")
	require.NoError(t, err)
	assert.Equal(t, primitive.NilObjectID, parsed)

	_, err = ParseID("not-hex")
	assert.ErrorIs(t, err, ErrBadID)
}

func TestParseTimeFormats(t *testing.T) {
	ts, err := ParseTime("2024-06-10T08:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 10, 8, 30, 0, 0, time.UTC), ts)

	// Calendar placement sends bare dates.
	ts, err = ParseTime("2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), ts)

	ts, err = ParseTime("")
	require.NoError(t, err)
	assert.True(t, ts.IsZero())

	_, err = ParseTime("June 10th")
	assert.Error(t, err)
}

func TestToEntryDefaultsForStrength(t *testing.T) {
	w := ExerciseEntry{
		ExerciseID: primitive.NewObjectID().Hex(),
		Category:   "strength",
	}

	entry, err := ToEntry(w)
	require.NoError(t, err)
	require.NotNil(t, entry.Rep)
	assert.Nil(t, entry.Timed)
	// Absent optionals take floors and the category's rest default.
	assert.Equal(t, 1, entry.Rep.Sets)
	assert.Equal(t, 1, entry.Rep.Reps)
	assert.Equal(t, 60, entry.Rep.RestSeconds)
	assert.Nil(t, entry.Rep.WeightKg)
}

func TestToEntryDefaultsForTimed(t *testing.T) {
	w := ExerciseEntry{
		ExerciseID: primitive.NewObjectID().Hex(),
		Category:   "cardio",
	}

	entry, err := ToEntry(w)
	require.NoError(t, err)
	require.NotNil(t, entry.Timed)
	assert.Nil(t, entry.Rep)
	assert.Equal(t, 0, entry.Timed.DurationSeconds)
	assert.Equal(t, 30, entry.Timed.RestSeconds)

	w.Category = "cooldown"
	entry, err = ToEntry(w)
	require.NoError(t, err)
	assert.Equal(t, 15, entry.Timed.RestSeconds)
}

func TestToEntryExplicitValuesWin(t *testing.T) {
	w := ExerciseEntry{
		ExerciseID:  primitive.NewObjectID().Hex(),
		Category:    "strength",
		Sets:        intPtr(5),
		Reps:        intPtr(3),
		RestSeconds: intPtr(180),
		WeightKg:    float64Ptr(100),
	}

	entry, err := ToEntry(w)
	require.NoError(t, err)
	assert.Equal(t, 5, entry.Rep.Sets)
	assert.Equal(t, 3, entry.Rep.Reps)
	assert.Equal(t, 180, entry.Rep.RestSeconds)
	require.NotNil(t, entry.Rep.WeightKg)
	assert.Equal(t, 100.0, *entry.Rep.WeightKg)
}

func TestToEntryRejectsUnknownCategory(t *testing.T) {
	w := ExerciseEntry{ExerciseID: primitive.NewObjectID().Hex(), Category: "swimming"}
	_, err := ToEntry(w)
	assert.ErrorIs(t, err, domain.ErrEntryBadCategory)
}

func TestEntryRoundTrip(t *testing.T) {
	entry := domain.ExerciseEntry{
		ExerciseID: primitive.NewObjectID(),
		OrderIndex: 2,
		Category:   domain.CategoryCardio,
		Timed: &domain.TimedScheme{
			DurationSeconds: 900,
			DistanceMeters:  float64Ptr(3000),
			RestSeconds:     45,
		},
	}

	back, err := ToEntry(FromEntry(entry))
	require.NoError(t, err)
	assert.Equal(t, entry, back)
}

func TestToTemplateDefaultsIsTemplate(t *testing.T) {
	w := Template{
		CoachID: primitive.NewObjectID().Hex(),
		Name:    "Pull Day",
		Entries: []ExerciseEntry{
			{ExerciseID: primitive.NewObjectID().Hex(), Category: "strength", Sets: intPtr(3), Reps: intPtr(8)},
		},
	}

	tmpl, err := ToTemplate(w)
	require.NoError(t, err)
	// Payloads that predate personalized clones omit the flag; they are
	// reusable templates.
	assert.True(t, tmpl.IsTemplate)
	assert.Nil(t, tmpl.ClientID)
}

func TestToTemplateClone(t *testing.T) {
	isTemplate := false
	clientID := primitive.NewObjectID()
	w := Template{
		CoachID:    primitive.NewObjectID().Hex(),
		Name:       "Pull Day (Alice)",
		IsTemplate: &isTemplate,
		ClientID:   clientID.Hex(),
		Entries:    []ExerciseEntry{{ExerciseID: primitive.NewObjectID().Hex(), Category: "strength"}},
	}

	tmpl, err := ToTemplate(w)
	require.NoError(t, err)
	assert.False(t, tmpl.IsTemplate)
	require.NotNil(t, tmpl.ClientID)
	assert.Equal(t, clientID, *tmpl.ClientID)
}

func TestToAssignmentDefaultsStatus(t *testing.T) {
	w := Assignment{
		WorkoutID: primitive.NewObjectID().Hex(),
		ClientID:  primitive.NewObjectID().Hex(),
		DueDate:   "2024-06-12",
	}

	a, err := ToAssignment(w)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, a.Status)
	assert.Equal(t, time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), a.DueDate)
}

func TestSessionRoundTrip(t *testing.T) {
	completed := time.Date(2024, 6, 12, 18, 45, 0, 0, time.UTC)
	session := &domain.Session{
		ID:              primitive.NewObjectID(),
		AssignmentID:    primitive.NewObjectID(),
		WorkoutID:       primitive.NewObjectID(),
		ClientID:        primitive.NewObjectID(),
		StartedAt:       time.Date(2024, 6, 12, 18, 0, 0, 0, time.UTC),
		CompletedAt:     &completed,
		DurationSeconds: intPtr(2700),
	}

	back, err := ToSession(FromSession(session))
	require.NoError(t, err)
	assert.Equal(t, session, back)
}

func TestLogRoundTrip(t *testing.T) {
	log := &domain.ExerciseLog{
		ID:            primitive.NewObjectID(),
		SessionID:     primitive.NewObjectID(),
		ExerciseID:    primitive.NewObjectID(),
		SetNumber:     2,
		RepsCompleted: intPtr(12),
		WeightKg:      float64Ptr(52.5),
		CreatedAt:     time.Date(2024, 6, 12, 18, 10, 0, 0, time.UTC),
	}

	back, err := ToLog(FromLog(log))
	require.NoError(t, err)
	assert.Equal(t, log, back)
}
