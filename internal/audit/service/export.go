package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/railzwaylabs/waterworks/internal/audit/domain"
	"gorm.io/gorm"
)

var ErrUnsupportedFormat = errors.New("unsupported_export_format")

type ExportService struct {
	db   *gorm.DB
	repo domain.Repository
}

func NewExportService(db *gorm.DB, repo domain.Repository) domain.ExportService {
	return &ExportService{db: db, repo: repo}
}

func (s *ExportService) Export(ctx context.Context, req domain.ExportRequest) (*domain.ExportResult, error) {
	logs, err := s.repo.List(ctx, s.db, domain.ListFilter{
		From:    req.StartDate,
		To:      req.EndDate,
		Actions: req.Actions,
	})
	if err != nil {
		return nil, err
	}

	var data []byte
	switch req.Format {
	case domain.ExportFormatCSV:
		data, err = formatCSV(logs)
	case domain.ExportFormatJSON:
		data, err = formatJSON(logs)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%s", req.Format)
	}
	if err != nil {
		return nil, err
	}

	return &domain.ExportResult{
		Data:     data,
		Checksum: checksum(data),
		Format:   req.Format,
		Count:    len(logs),
	}, nil
}

var csvHeader = []string{
	"timestamp",
	"actor_type",
	"actor_id",
	"action",
	"target_type",
	"target_id",
	"ip_address",
	"user_agent",
	"metadata",
}

func formatCSV(logs []domain.AuditLog) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, entry := range logs {
		metadata, err := json.Marshal(entry.Metadata)
		if err != nil {
			return nil, err
		}
		row := []string{
			entry.CreatedAt.UTC().Format(time.RFC3339),
			entry.ActorType,
			deref(entry.ActorID),
			entry.Action,
			entry.TargetType,
			deref(entry.TargetID),
			deref(entry.IPAddress),
			deref(entry.UserAgent),
			string(metadata),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type exportRecord struct {
	Timestamp  string         `json:"timestamp"`
	ActorType  string         `json:"actor_type"`
	ActorID    string         `json:"actor_id,omitempty"`
	Action     string         `json:"action"`
	TargetType string         `json:"target_type"`
	TargetID   string         `json:"target_id,omitempty"`
	IPAddress  string         `json:"ip_address,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func formatJSON(logs []domain.AuditLog) ([]byte, error) {
	records := make([]exportRecord, 0, len(logs))
	for _, entry := range logs {
		records = append(records, exportRecord{
			Timestamp:  entry.CreatedAt.UTC().Format(time.RFC3339),
			ActorType:  entry.ActorType,
			ActorID:    deref(entry.ActorID),
			Action:     entry.Action,
			TargetType: entry.TargetType,
			TargetID:   deref(entry.TargetID),
			IPAddress:  deref(entry.IPAddress),
			UserAgent:  deref(entry.UserAgent),
			Metadata:   entry.Metadata,
		})
	}
	return json.MarshalIndent(records, "", "  ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
