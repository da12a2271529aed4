package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/ganot/taskdesk/internal/domain/activity"
	"github.com/stretchr/testify/require"
)

func TestActivityRepository_LogAndList(t *testing.T) {
	db := NewTestDB(t)
	repo := NewActivityRepository(db)
	ctx := context.Background()

	projectID := "p1"
	base := time.Now().Add(-time.Minute)
	entries := []*activity.ActivityEntry{
		{Collection: activity.CollectionProjects, EntityID: &projectID, ActivityType: activity.TypeProjectCreated, Summary: "created", CreatedAt: base},
		{Collection: activity.CollectionProjects, EntityID: &projectID, ActivityType: activity.TypeProjectUpdated, Summary: "updated", CreatedAt: base.Add(time.Second)},
		{Collection: activity.CollectionQuickTasks, ActivityType: activity.TypeQuickTaskAdded, Summary: "added", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, entry := range entries {
		require.NoError(t, repo.Log(ctx, entry))
		require.NotZero(t, entry.ID)
	}

	all, err := repo.List(ctx, activity.ListActivityOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, activity.TypeQuickTaskAdded, all[0].ActivityType)
	require.Nil(t, all[0].EntityID)

	projects, err := repo.List(ctx, activity.ListActivityOptions{Collection: activity.CollectionProjects})
	require.NoError(t, err)
	require.Len(t, projects, 2)

	updated := activity.TypeProjectUpdated
	filtered, err := repo.List(ctx, activity.ListActivityOptions{EntityID: &projectID, ActivityType: &updated})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, "updated", filtered[0].Summary)

	paged, err := repo.List(ctx, activity.ListActivityOptions{Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 2)

	limited, err := repo.List(ctx, activity.ListActivityOptions{Limit: 1, Offset: 2})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	require.Equal(t, activity.TypeProjectCreated, limited[0].ActivityType)
}
