package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/railzwaylabs/waterworks/internal/audit/domain"
	"github.com/railzwaylabs/waterworks/internal/audit/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.AuditLog{}))
	return db
}

func strPtr(s string) *string { return &s }

func TestAuditLogAndExport(t *testing.T) {
	db := newTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	repo := repository.Provide()

	svc := NewService(Params{DB: db, Log: zap.NewNop(), GenID: node, Repo: repo})
	ctx := domain.WithRequestInfo(context.Background(), domain.RequestInfo{IPAddress: "10.0.0.7", UserAgent: "curl"})

	require.NoError(t, svc.AuditLog(ctx, domain.ActorTypeUser, strPtr("1"), "payment.recorded", "reading", strPtr("55"),
		map[string]any{"amount": "70.00"}))
	require.NoError(t, svc.AuditLog(context.Background(), domain.ActorTypeSystem, nil, "user.created", "user", strPtr("9"), nil))

	exporter := NewExportService(db, repo)
	start := time.Now().UTC().Add(-time.Hour)
	end := time.Now().UTC().Add(time.Hour)

	t.Run("csv", func(t *testing.T) {
		result, err := exporter.Export(context.Background(), domain.ExportRequest{StartDate: start, EndDate: end, Format: domain.ExportFormatCSV})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Count)

		sum := sha256.Sum256(result.Data)
		assert.Equal(t, hex.EncodeToString(sum[:]), result.Checksum)

		rows, err := csv.NewReader(bytes.NewReader(result.Data)).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, csvHeader, rows[0])
		assert.Equal(t, "payment.recorded", rows[1][3])
		assert.Equal(t, "10.0.0.7", rows[1][6])
	})

	t.Run("json filtered by action", func(t *testing.T) {
		result, err := exporter.Export(context.Background(), domain.ExportRequest{
			StartDate: start,
			EndDate:   end,
			Format:    domain.ExportFormatJSON,
			Actions:   []string{"user.created"},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Count)

		var records []exportRecord
		require.NoError(t, json.Unmarshal(result.Data, &records))
		require.Len(t, records, 1)
		assert.Equal(t, "system", records[0].ActorType)
		assert.Empty(t, records[0].IPAddress)
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := exporter.Export(context.Background(), domain.ExportRequest{StartDate: start, EndDate: end, Format: "xml"})
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestAuditLog_WithTxFollowsTransaction(t *testing.T) {
	db := newTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := NewService(Params{DB: db, Log: zap.NewNop(), GenID: node, Repo: repository.Provide()})

	errRollback := errors.New("rollback")
	err = db.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, svc.WithTx(tx).AuditLog(context.Background(), domain.ActorTypeUser, strPtr("1"), "payment.record", "reading", strPtr("7"), nil))
		return errRollback
	})
	require.ErrorIs(t, err, errRollback)

	var count int64
	require.NoError(t, db.Model(&domain.AuditLog{}).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return svc.WithTx(tx).AuditLog(context.Background(), domain.ActorTypeUser, strPtr("1"), "payment.record", "reading", strPtr("7"), nil)
	}))
	require.NoError(t, db.Model(&domain.AuditLog{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
