package entities_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/pinreport/internal/domain/entities"
)

func TestApprovalMetaApproved(t *testing.T) {
	t.Parallel()

	t.Run("should match the approved status case-insensitively", func(t *testing.T) {
		t.Parallel()

		// given
		meta := entities.ApprovalMeta{Status: "  APPROVED "}

		// when
		result := meta.Approved()

		// then
		assert.True(t, result)
	})

	t.Run("should reject any other status", func(t *testing.T) {
		t.Parallel()

		// given
		meta := entities.ApprovalMeta{Status: "pending"}

		// when
		result := meta.Approved()

		// then
		assert.False(t, result)
	})
}

func TestApprovalMetaApproachingExpiry(t *testing.T) {
	t.Parallel()

	today := date(2024, time.June, 1)

	t.Run("should flag an end date inside the urgency window", func(t *testing.T) {
		t.Parallel()

		// given
		meta := entities.ApprovalMeta{EndDate: datePtr(2024, time.July, 15)}

		// when
		result := meta.ApproachingExpiry(today)

		// then
		assert.True(t, result)
	})

	t.Run("should flag an end date falling exactly today", func(t *testing.T) {
		t.Parallel()

		// given
		meta := entities.ApprovalMeta{EndDate: datePtr(2024, time.June, 1)}

		// when
		result := meta.ApproachingExpiry(today)

		// then
		assert.True(t, result)
	})

	t.Run("should not flag an already-expired approval", func(t *testing.T) {
		t.Parallel()

		// given
		meta := entities.ApprovalMeta{EndDate: datePtr(2024, time.May, 31)}

		// when
		result := meta.ApproachingExpiry(today)

		// then
		assert.False(t, result)
	})

	t.Run("should not flag an end date beyond the window", func(t *testing.T) {
		t.Parallel()

		// given
		meta := entities.ApprovalMeta{EndDate: datePtr(2024, time.December, 1)}

		// when
		result := meta.ApproachingExpiry(today)

		// then
		assert.False(t, result)
	})

	t.Run("should never flag an approval without an end date", func(t *testing.T) {
		t.Parallel()

		// given
		meta := entities.ApprovalMeta{}

		// when
		result := meta.ApproachingExpiry(today)

		// then
		assert.False(t, result)
	})
}

func TestApprovalLedger(t *testing.T) {
	t.Parallel()

	t.Run("should match names case-insensitively", func(t *testing.T) {
		t.Parallel()

		// given
		ledger := make(entities.ApprovalLedger)
		ledger.Add("Django", "4.2.1", entities.ApprovalMeta{ID: "BA-1", Status: "approved"})

		// when
		entries := ledger.Lookup("django", "4.2.1")

		// then
		require.Len(t, entries, 1)
		assert.Equal(t, "BA-1", entries[0].ID)
	})

	t.Run("should never match an empty version", func(t *testing.T) {
		t.Parallel()

		// given
		ledger := make(entities.ApprovalLedger)
		ledger.Add("pkg", "", entities.ApprovalMeta{ID: "BA-1"})

		// when
		entries := ledger.Lookup("pkg", "")

		// then
		assert.Empty(t, entries)
	})

	t.Run("should keep the first entry seen for a duplicate approval ID", func(t *testing.T) {
		t.Parallel()

		// given
		ledger := make(entities.ApprovalLedger)
		ledger.Add("pkg", "1.0.0", entities.ApprovalMeta{ID: "BA-1", Status: "approved"})
		ledger.Add("pkg", "1.0.0", entities.ApprovalMeta{ID: "BA-1", Status: "rejected"})

		// when
		entries := ledger.Lookup("pkg", "1.0.0")

		// then
		require.Len(t, entries, 1)
		assert.Equal(t, "approved", entries[0].Status)
	})

	t.Run("should order dated approvals before undated ones", func(t *testing.T) {
		t.Parallel()

		// given
		ledger := make(entities.ApprovalLedger)
		ledger.Add("pkg", "1.0.0", entities.ApprovalMeta{ID: "BA-1", Status: "approved"})
		ledger.Add("pkg", "1.0.0", entities.ApprovalMeta{
			ID:      "BA-2",
			Status:  "pending",
			EndDate: datePtr(2024, time.July, 1),
		})

		// when
		entries := ledger.Lookup("pkg", "1.0.0")

		// then
		require.Len(t, entries, 2)
		assert.Equal(t, "BA-2", entries[0].ID)
		assert.Equal(t, "BA-1", entries[1].ID)
	})

	t.Run("should order farther end dates before nearer ones", func(t *testing.T) {
		t.Parallel()

		// given
		ledger := make(entities.ApprovalLedger)
		ledger.Add("pkg", "1.0.0", entities.ApprovalMeta{
			ID:      "BA-NEAR",
			EndDate: datePtr(2024, time.July, 1),
		})
		ledger.Add("pkg", "1.0.0", entities.ApprovalMeta{
			ID:      "BA-FAR",
			EndDate: datePtr(2025, time.July, 1),
		})

		// when
		entries := ledger.Lookup("pkg", "1.0.0")

		// then
		require.Len(t, entries, 2)
		assert.Equal(t, "BA-FAR", entries[0].ID)
		assert.Equal(t, "BA-NEAR", entries[1].ID)
	})

	t.Run("should surface non-approved statuses before approved on equal dates", func(t *testing.T) {
		t.Parallel()

		// given
		end := datePtr(2024, time.July, 1)
		ledger := make(entities.ApprovalLedger)
		ledger.Add("pkg", "1.0.0", entities.ApprovalMeta{ID: "BA-OK", Status: "approved", EndDate: end})
		ledger.Add("pkg", "1.0.0", entities.ApprovalMeta{ID: "BA-REJ", Status: "rejected", EndDate: end})

		// when
		entries := ledger.Lookup("pkg", "1.0.0")

		// then
		require.Len(t, entries, 2)
		assert.Equal(t, "BA-REJ", entries[0].ID)
		assert.Equal(t, "BA-OK", entries[1].ID)
	})

	t.Run("should break full ties by descending approval ID", func(t *testing.T) {
		t.Parallel()

		// given
		end := datePtr(2024, time.July, 1)
		ledger := make(entities.ApprovalLedger)
		ledger.Add("pkg", "1.0.0", entities.ApprovalMeta{ID: "BA-100", Status: "approved", EndDate: end})
		ledger.Add("pkg", "1.0.0", entities.ApprovalMeta{ID: "BA-200", Status: "approved", EndDate: end})

		// when
		entries := ledger.Lookup("pkg", "1.0.0")

		// then
		require.Len(t, entries, 2)
		assert.Equal(t, "BA-200", entries[0].ID)
		assert.Equal(t, "BA-100", entries[1].ID)
	})
}
