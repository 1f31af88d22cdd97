package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"efile/internal/filing/models"
	filingservice "efile/internal/filing/service"
	id "efile/pkg/domain"
	dErrors "efile/pkg/domain-errors"
)

func TestBuildCreateRequest(t *testing.T) {
	entity := id.NewEntityID()

	t.Run("quarterly report", func(t *testing.T) {
		req, err := buildCreateRequest("ec603", entity.String(), 2021, "Q2", "")
		require.NoError(t, err)
		assert.Equal(t, models.FilingTypeEC603, req.FilingType)
		assert.Equal(t, entity, req.EntityID)
		assert.Equal(t, models.Q2, req.Quarter)
		assert.Nil(t, req.AmendsID)
	})

	t.Run("amendment", func(t *testing.T) {
		prev := id.NewFilingID()
		req, err := buildCreateRequest("ec601", entity.String(), 0, "", prev.String())
		require.NoError(t, err)
		require.NotNil(t, req.AmendsID)
		assert.Equal(t, prev, *req.AmendsID)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := buildCreateRequest("ec999", entity.String(), 2021, "", "")
		assert.Error(t, err)
		_, err = buildCreateRequest("ec601", "not-a-uuid", 2021, "", "")
		assert.Error(t, err)
		_, err = buildCreateRequest("ec603", entity.String(), 2021, "Q5", "")
		assert.True(t, dErrors.HasKind(err, dErrors.KindInvalidPeriod))
	})
}

func TestParseStatuses(t *testing.T) {
	got, err := parseStatuses([]string{"filed", "canceled"})
	require.NoError(t, err)
	assert.Equal(t, []models.Status{models.StatusFiled, models.StatusCanceled}, got)

	_, err = parseStatuses([]string{"archived"})
	assert.Error(t, err)
}

func TestPostgresFilingTxRejectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := newPostgresFilingTx(nil, 0).RunInTx(ctx, func(context.Context, filingservice.Store) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	assert.False(t, called)
}

func TestKafkaProvisionRequiresBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "none.env"), "kafka", "provision"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}
