package history

import (
	"context"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	a, err := NewID()
	require.NoError(t, err)
	b, err := NewID()
	require.NoError(t, err)
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}

func TestSQLite_RecordAndRecent(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, artist := range []string{"a", "b", "c"} {
		r := &Record{ArtistID: artist, Instructions: "post " + artist, Model: "gemini-2.0-flash", Text: "copy", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, db.Record(ctx, r))
		assert.NotEmpty(t, r.ID)
	}
	require.NoError(t, db.Record(ctx, &Record{ArtistID: "d", Instructions: "x", Error: "media processing failed", CreatedAt: base.Add(time.Hour)}))

	got, err := db.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "d", got[0].ArtistID)
	assert.True(t, got[0].Failed())
	assert.Equal(t, "c", got[1].ArtistID)
	assert.Equal(t, base.Add(2*time.Minute), got[1].CreatedAt)

	all, err := db.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

type fakeDynamo struct {
	items []map[string]types.AttributeValue
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.items = append(f.items, in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	items := append([]map[string]types.AttributeValue(nil), f.items...)
	sort.Slice(items, func(i, j int) bool {
		return items[i]["GSI1SK"].(*types.AttributeValueMemberS).Value > items[j]["GSI1SK"].(*types.AttributeValueMemberS).Value
	})
	if n := int(*in.Limit); len(items) > n {
		items = items[:n]
	}
	return &dynamodb.QueryOutput{Items: items}, nil
}

func TestDynamo_RecordAndRecent(t *testing.T) {
	fake := &fakeDynamo{}
	d := NewDynamo(fake, "generations")
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, d.Record(ctx, &Record{ID: "01A", ArtistID: "a", Instructions: "one", CreatedAt: base}))
	require.NoError(t, d.Record(ctx, &Record{ID: "01B", ArtistID: "b", Instructions: "two", MediaName: "clip.mp4", CreatedAt: base.Add(time.Second)}))

	pk := fake.items[0]["PK"].(*types.AttributeValueMemberS).Value
	assert.Equal(t, "GENERATION#01A", pk)

	got, err := d.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "01B", got[0].ID)
	assert.Equal(t, "clip.mp4", got[0].MediaName)
	assert.Equal(t, base, got[1].CreatedAt)
}
