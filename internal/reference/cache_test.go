package reference

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-approval/internal/common/logger"
)

func TestCachedSource_HitSkipsDatabase(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	next := &stubLister{values: map[string][]string{"person_gender": {"x"}}}
	source := NewCachedSource(next, rdb, time.Hour, logger.NewTestLogger(t))

	mock.ExpectGet("loan:choices:person_gender").SetVal(`["female","male"]`)

	got, err := source.ListDistinct(context.Background(), "person_gender")
	require.NoError(t, err)
	assert.Equal(t, []string{"female", "male"}, got)
	assert.Equal(t, 0, next.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedSource_MissPopulates(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	next := &stubLister{values: map[string][]string{"loan_intent": {"EDUCATION", "VENTURE"}}}
	source := NewCachedSource(next, rdb, 10*time.Minute, logger.NewTestLogger(t))

	mock.ExpectGet("loan:choices:loan_intent").RedisNil()
	mock.ExpectSet("loan:choices:loan_intent", `["EDUCATION","VENTURE"]`, 10*time.Minute).SetVal("OK")

	got, err := source.ListDistinct(context.Background(), "loan_intent")
	require.NoError(t, err)
	assert.Equal(t, []string{"EDUCATION", "VENTURE"}, got)
	assert.Equal(t, 1, next.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedSource_RedisDownFallsThrough(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	next := &stubLister{values: map[string][]string{"person_education": {"Master"}}}
	source := NewCachedSource(next, rdb, time.Minute, logger.NewTestLogger(t))

	mock.ExpectGet("loan:choices:person_education").SetErr(errors.New("connection refused"))
	mock.ExpectSet("loan:choices:person_education", `["Master"]`, time.Minute).SetErr(errors.New("connection refused"))

	got, err := source.ListDistinct(context.Background(), "person_education")
	require.NoError(t, err)
	assert.Equal(t, []string{"Master"}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedSource_SourceErrorIsReturned(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	next := &stubLister{err: errors.New("table missing")}
	source := NewCachedSource(next, rdb, time.Minute, logger.NewTestLogger(t))

	mock.ExpectGet("loan:choices:loan_intent").RedisNil()

	_, err := source.ListDistinct(context.Background(), "loan_intent")
	assert.ErrorContains(t, err, "table missing")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedSource_MiniredisTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	next := &stubLister{values: map[string][]string{"person_gender": {"female", "male"}}}
	source := NewCachedSource(next, rdb, 30*time.Second, logger.NewNoOpLogger())

	ctx := context.Background()
	_, err := source.ListDistinct(ctx, "person_gender")
	require.NoError(t, err)
	_, err = source.ListDistinct(ctx, "person_gender")
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)

	assert.Equal(t, 30*time.Second, mr.TTL(CacheKey("person_gender")))

	mr.FastForward(31 * time.Second)
	_, err = source.ListDistinct(ctx, "person_gender")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}
