package aggregators

import (
	"testing"

	"kv-transactions/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestEventFingerprinter_Fingerprint(t *testing.T) {
	t.Parallel()

	fp := NewEventFingerprinter()
	base := models.Event{"id": "A", "_time": "100", "v": "x"}

	tests := []struct {
		name  string
		event models.Event
		same  bool
	}{
		{name: "identical content", event: models.Event{"v": "x", "_time": "100", "id": "A"}, same: true},
		{
			name: "aggregation output ignored",
			event: models.Event{
				"id": "A", "_time": "100", "v": "x",
				"_key": "A", "_user": "nobody", "event_count": "3", "duration": "4", "start_time": "96",
				"hashes": "abc", "__latest_v": "100",
			},
			same: true,
		},
		{name: "different value", event: models.Event{"id": "A", "_time": "100", "v": "y"}, same: false},
		{name: "different time", event: models.Event{"id": "A", "_time": "100.0", "v": "x"}, same: false},
		{name: "extra field", event: models.Event{"id": "A", "_time": "100", "v": "x", "w": ""}, same: false},
	}

	expected := fp.Fingerprint(base)
	assert.Len(t, expected, 32)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := fp.Fingerprint(tt.event)
			if tt.same {
				assert.Equal(t, expected, got)
			} else {
				assert.NotEqual(t, expected, got)
			}
		})
	}
}

func TestEventFingerprinter_KnownDigest(t *testing.T) {
	t.Parallel()

	// md5(`{}`)
	assert.Equal(t, "99914b932bd37a50b983c5e7c90ae93b", NewEventFingerprinter().Fingerprint(models.Event{"_key": "A"}))
}
