package lint

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/latticehq/lattice/internal/index"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *index.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := index.Open(context.Background(), filepath.Join(dir, "index.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMissingReferenceRuleFlagsUnknownTarget(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		if err := index.InsertDocument(ctx, tx, index.DocumentRow{ID: "AAA2", Path: "a.md", Name: "a", Description: "d"}, nil); err != nil {
			return err
		}
		return index.ReplaceLinks(ctx, tx, "AAA2", []index.Link{{SourceID: "AAA2", TargetID: "ZZZ9", Type: index.LinkBody, Position: 0}})
	}))

	lctx := &Context{Queryer: db.Conn()}
	row, err := index.GetDocument(ctx, db.Conn(), "AAA2")
	require.NoError(t, err)

	results := MissingReferenceRule{}.Check(ctx, Document{Row: *row}, lctx)
	require.Len(t, results, 1)
	require.Equal(t, "E002", results[0].Code)
}

func TestMissingPriorityRuleOnlyAppliesToTasks(t *testing.T) {
	taskRow := index.DocumentRow{ID: "AAA2", Path: "a.md", Name: "a", Description: "d", TaskType: "task"}
	results := MissingPriorityRule{}.Check(context.Background(), Document{Row: taskRow}, &Context{})
	require.Len(t, results, 1)
	require.Equal(t, "E004", results[0].Code)

	knowledgeRow := index.DocumentRow{ID: "AAA3", Path: "b.md", Name: "b", Description: "d"}
	results = MissingPriorityRule{}.Check(context.Background(), Document{Row: knowledgeRow}, &Context{})
	require.Empty(t, results)
}

func TestInvalidIDFormatRule(t *testing.T) {
	row := index.DocumentRow{ID: "not-an-id", Path: "a.md", Name: "a", Description: "d"}
	results := InvalidIDFormatRule{}.Check(context.Background(), Document{Row: row}, &Context{})
	require.Len(t, results, 1)
	require.Equal(t, "E007", results[0].Code)
}

func TestNameMismatchRule(t *testing.T) {
	row := index.DocumentRow{ID: "AAA2", Path: "tasks/foo.md", Name: "wrong-name", Description: "d"}
	results := NameMismatchRule{}.Check(context.Background(), Document{Row: row}, &Context{})
	require.Len(t, results, 1)
	require.Equal(t, "E008", results[0].Code)
}

func TestNonTaskInClosedRuleFlagsKnowledgeDoc(t *testing.T) {
	row := index.DocumentRow{ID: "AAA2", Path: "tasks/.closed/foo.md", Name: "foo", Description: "d"}
	results := NonTaskInClosedRule{}.Check(context.Background(), Document{Row: row}, &Context{})
	require.Len(t, results, 1)
	require.Equal(t, "E012", results[0].Code)
}

func TestCircularBlockingRuleReportsOnFirstDocumentLexicographically(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		for _, id := range []string{"BBB2", "AAA2", "CCC2"} {
			if err := index.InsertDocument(ctx, tx, index.DocumentRow{ID: id, Path: id + ".md", Name: id, Description: "d", TaskType: "task", Priority: intPtr(1)}, nil); err != nil {
				return err
			}
		}
		if err := index.ReplaceLinks(ctx, tx, "AAA2", []index.Link{{SourceID: "AAA2", TargetID: "BBB2", Type: index.LinkBlockedBy, Position: 0}}); err != nil {
			return err
		}
		if err := index.ReplaceLinks(ctx, tx, "BBB2", []index.Link{{SourceID: "BBB2", TargetID: "CCC2", Type: index.LinkBlockedBy, Position: 0}}); err != nil {
			return err
		}
		return index.ReplaceLinks(ctx, tx, "CCC2", []index.Link{{SourceID: "CCC2", TargetID: "AAA2", Type: index.LinkBlockedBy, Position: 0}})
	}))

	lctx := &Context{Queryer: db.Conn()}
	summary, err := ExecuteRules(ctx, lctx, []Rule{CircularBlockingRule{}}, Config{})
	require.NoError(t, err)
	require.Equal(t, 1, summary.ErrorCount)
	require.Equal(t, "E006", summary.Results[0].Code)
	require.Equal(t, "AAA2.md", summary.Results[0].Path)
}

func intPtr(i int) *int { return &i }
