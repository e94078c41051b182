package savedstate

// SavedStateV2 adds the per-profile write queue and splits notification
// timestamps.
type SavedStateV2 struct {
	Auth        *AuthTokensV1               `cbor:"1,keyasint" json:"auth"`
	Navigation  NavigationV0                `cbor:"2,keyasint,omitempty" json:"navigation"`
	ProfileData map[ProfileID]ProfileDataV2 `cbor:"3,keyasint,omitempty" json:"profileData,omitempty"`
}

type ProfileDataV2 struct {
	Preferences   PreferencesV0   `cbor:"1,keyasint,omitempty" json:"preferences"`
	Notifications NotificationsV2 `cbor:"2,keyasint,omitempty" json:"notifications"`
	Writes        WritesV2        `cbor:"3,keyasint,omitempty" json:"writes"`
}

type NotificationsV2 struct {
	LastRead      *Instant `cbor:"1,keyasint" json:"lastRead,omitempty"`
	LastRefreshed *Instant `cbor:"2,keyasint" json:"lastRefreshed,omitempty"`
}

// WritesV2 is the persisted write queue. Its entries are opaque here; the
// queue owns their meaning.
type WritesV2 struct {
	Pending []WritableV2    `cbor:"1,keyasint,omitempty" json:"pending,omitempty"`
	Failed  []FailedWriteV2 `cbor:"2,keyasint,omitempty" json:"failed,omitempty"`
}

type WritableV2 struct {
	Kind    string `cbor:"1,keyasint,omitempty" json:"kind"`
	Payload []byte `cbor:"2,keyasint,omitempty" json:"payload,omitempty"`
}

type FailedWriteV2 struct {
	Writable WritableV2 `cbor:"1,keyasint,omitempty" json:"writable"`
	FailedAt Instant    `cbor:"2,keyasint,omitempty" json:"failedAt"`
	Reason   string     `cbor:"3,keyasint,omitempty" json:"reason,omitempty"`
}

func (SavedStateV2) SnapshotVersion() Version { return 2 }
func (SavedStateV2) snapshot()                {}
