package services

import (
	"testing"

	"spoolman/spoolman/broker"
	"spoolman/spoolman/models"
	"spoolman/spoolman/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSpool_FilamentNotFound(t *testing.T) {
	db, close := testutils.SetupSQLiteDB()
	defer close()

	publisher := &testutils.RecordingPublisher{}
	_, err := NewSpoolService(publisher).CreateSpool(db, models.SpoolParameters{FilamentID: 404})

	assert.ErrorIs(t, err, ErrFilamentNotFound)
	assert.Empty(t, publisher.Events())
}

func TestCreateSpool_PublishesAdded(t *testing.T) {
	db, close := testutils.SetupSQLiteDB()
	defer close()

	filament, err := NewFilamentService().CreateFilament(db, models.FilamentParameters{Density: 1.24, Diameter: 1.75})
	require.NoError(t, err)

	publisher := &testutils.RecordingPublisher{}
	spool, err := NewSpoolService(publisher).CreateSpool(db, models.SpoolParameters{
		FilamentID: filament.ID,
		Location:   stringPtr("Shelf A"),
	})
	require.NoError(t, err)

	assert.NotZero(t, spool.ID)
	require.NotNil(t, spool.Filament)
	assert.Equal(t, filament.ID, spool.Filament.ID)

	events := publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, broker.EntityTopic(models.SpoolResource, spool.ID), events[0].Topic)
	assert.Equal(t, models.EventAdded, events[0].Event.Type)
	assert.Equal(t, models.SpoolResource, events[0].Event.Resource)
}

func TestGetSpools_FilterByFilament(t *testing.T) {
	db, close := testutils.SetupSQLiteDB()
	defer close()

	first := createSpool(t, db, spoolFixture{})
	second := createSpool(t, db, spoolFixture{})
	svc := NewSpoolService(nil)

	all, err := svc.GetSpools(db, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)

	filtered, err := svc.GetSpools(db, intPtr(first.FilamentID))
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, first.ID, filtered[0].ID)
	require.NotNil(t, filtered[0].Filament)
}

func TestGetSpoolById_NotFound(t *testing.T) {
	db, close := testutils.SetupSQLiteDB()
	defer close()

	_, err := NewSpoolService(nil).GetSpoolById(db, 3)
	assert.ErrorIs(t, err, ErrSpoolNotFound)
}

func TestDeleteSpool(t *testing.T) {
	db, close := testutils.SetupSQLiteDB()
	defer close()

	spool := createSpool(t, db, spoolFixture{})
	publisher := &testutils.RecordingPublisher{}
	svc := NewSpoolService(publisher)

	require.NoError(t, svc.DeleteSpool(db, spool.ID))
	_, err := svc.GetSpoolById(db, spool.ID)
	assert.ErrorIs(t, err, ErrSpoolNotFound)

	events := publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventDeleted, events[0].Event.Type)

	assert.ErrorIs(t, svc.DeleteSpool(db, spool.ID), ErrSpoolNotFound)
	assert.Len(t, publisher.Events(), 1)
}
