package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtycoon/forge/errors"
	"github.com/devtycoon/forge/graph"
	"github.com/devtycoon/forge/graph/graphtest"
	forgetest "github.com/devtycoon/forge/internal/testing"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		db.Close()
	})
	return db, mock
}

func TestGraphStore_SaveAndGet(t *testing.T) {
	store := NewGraphStore(forgetest.CreateMigratedTestDB(t))
	ctx := context.Background()

	g := graphtest.Branch()
	g.Language = graph.LangLua

	rec, err := store.SaveGraph(ctx, "", g)
	require.NoError(t, err)
	assert.Regexp(t, `^g-[a-z0-9]{10}$`, rec.ID)
	assert.Equal(t, "branch", rec.Name)
	assert.Equal(t, len(g.Nodes), rec.NodeCount)

	got, err := store.GetGraph(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "lua", got.Language)
	require.NotNil(t, got.Graph)
	assert.Equal(t, g.Nodes, got.Graph.Nodes)
	assert.Equal(t, g.Connections, got.Graph.Connections)
}

func TestGraphStore_SaveKeepsCreatedAt(t *testing.T) {
	store := NewGraphStore(forgetest.CreateMigratedTestDB(t))
	ctx := context.Background()

	first, err := store.SaveGraph(ctx, "g-fixed", graphtest.Hello())
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	g := graphtest.Hello()
	g.Name = "renamed"
	second, err := store.SaveGraph(ctx, "g-fixed", g)
	require.NoError(t, err)

	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	got, err := store.GetGraph(ctx, "g-fixed")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
}

func TestGraphStore_SaveRequiresGraph(t *testing.T) {
	store := NewGraphStore(forgetest.CreateMigratedTestDB(t))
	_, err := store.SaveGraph(context.Background(), "g-x", nil)
	assert.True(t, errors.IsInvalidRequestError(err))
}

func TestGraphStore_List(t *testing.T) {
	store := NewGraphStore(forgetest.CreateMigratedTestDB(t))
	ctx := context.Background()

	empty, err := store.ListGraphs(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = store.SaveGraph(ctx, "g-old", graphtest.Hello())
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = store.SaveGraph(ctx, "g-new", graphtest.Branch())
	require.NoError(t, err)

	recs, err := store.ListGraphs(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "g-new", recs[0].ID)
	assert.Nil(t, recs[0].Graph, "listings omit the document")
}

func TestGraphStore_DeleteCascadesArtifacts(t *testing.T) {
	store := NewGraphStore(forgetest.CreateMigratedTestDB(t))
	ctx := context.Background()

	_, err := store.SaveGraph(ctx, "g-1", graphtest.Hello())
	require.NoError(t, err)
	require.NoError(t, store.PutArtifact(ctx, &Artifact{GraphID: "g-1", Filename: "main.py", Language: "python", Source: "print(1)\n"}))

	require.NoError(t, store.DeleteGraph(ctx, "g-1"))

	_, err = store.GetGraph(ctx, "g-1")
	assert.True(t, errors.IsNotFoundError(err))
	files, err := store.ListArtifacts(ctx, "g-1")
	require.NoError(t, err)
	assert.Empty(t, files)

	assert.True(t, errors.IsNotFoundError(store.DeleteGraph(ctx, "g-1")))
}

func TestGraphStore_Artifacts(t *testing.T) {
	store := NewGraphStore(forgetest.CreateMigratedTestDB(t))
	ctx := context.Background()

	_, err := store.SaveGraph(ctx, "g-1", graphtest.Hello())
	require.NoError(t, err)

	require.NoError(t, store.PutArtifact(ctx, &Artifact{GraphID: "g-1", Filename: "main.py", Language: "python", Source: "v1", MaxDepth: 2}))
	require.NoError(t, store.PutArtifact(ctx, &Artifact{GraphID: "g-1", Filename: "main.lua", Language: "lua", Source: "lua"}))
	require.NoError(t, store.PutArtifact(ctx, &Artifact{GraphID: "g-1", Filename: "main.py", Language: "python", Source: "v2", MaxDepth: 3}))

	files, err := store.ListArtifacts(ctx, "g-1")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "main.lua", files[0].Filename)
	assert.Empty(t, files[1].Source, "listings omit source")

	a, err := store.GetArtifact(ctx, "g-1", "main.py")
	require.NoError(t, err)
	assert.Equal(t, "v2", a.Source)
	assert.Equal(t, 3, a.MaxDepth)

	_, err = store.GetArtifact(ctx, "g-1", "main.rs")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestGraphStore_ArtifactNeedsGraph(t *testing.T) {
	store := NewGraphStore(forgetest.CreateMigratedTestDB(t))
	err := store.PutArtifact(context.Background(), &Artifact{GraphID: "missing", Filename: "main.go", Source: "x"})
	assert.Error(t, err, "foreign key rejects artifacts for unknown graphs")
}

func TestGraphStore_DriverErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("save", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO graphs").WillReturnError(sql.ErrConnDone)

		_, err := NewGraphStore(db).SaveGraph(ctx, "g-1", graphtest.Hello())
		require.Error(t, err)
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.Contains(t, err.Error(), "failed to save graph g-1")
	})

	t.Run("get", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery("SELECT (.+) FROM graphs WHERE id = ?").WithArgs("g-1").WillReturnError(sql.ErrConnDone)

		_, err := NewGraphStore(db).GetGraph(ctx, "g-1")
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.False(t, errors.IsNotFoundError(err))
	})

	t.Run("corrupt document", func(t *testing.T) {
		db, mock := newMockDB(t)
		rows := sqlmock.NewRows([]string{"id", "name", "language", "document", "node_count", "created_at", "updated_at"}).
			AddRow("g-1", "x", "lua", "{not json", 0, "", "")
		mock.ExpectQuery("SELECT (.+) FROM graphs WHERE id = ?").WithArgs("g-1").WillReturnRows(rows)

		_, err := NewGraphStore(db).GetGraph(ctx, "g-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "corrupt document")
	})

	t.Run("list", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery("SELECT (.+) FROM graphs ORDER BY").WillReturnError(sql.ErrConnDone)

		_, err := NewGraphStore(db).ListGraphs(ctx)
		assert.ErrorIs(t, err, sql.ErrConnDone)
	})

	t.Run("delete", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("DELETE FROM graphs").WithArgs("g-1").WillReturnError(sql.ErrConnDone)

		err := NewGraphStore(db).DeleteGraph(ctx, "g-1")
		assert.ErrorIs(t, err, sql.ErrConnDone)
	})

	t.Run("install", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO artifacts").WillReturnError(sql.ErrTxDone)

		err := NewGraphStore(db).PutArtifact(ctx, &Artifact{GraphID: "g-1", Filename: "main.rs"})
		assert.ErrorIs(t, err, sql.ErrTxDone)
	})
}
