package savedstate

// SavedStateV0 is the shape written by the first release. Blobs at this
// version carry no version tag, and profile data is keyed by raw strings.
//
// Field numbers are shared by both wire formats. Pointer fields are encoded
// as explicit nulls so presence survives a round trip.
type SavedStateV0 struct {
	Auth        *AuthTokensV0            `cbor:"1,keyasint" json:"auth"`
	Navigation  NavigationV0             `cbor:"2,keyasint,omitempty" json:"navigation"`
	ProfileData map[string]ProfileDataV0 `cbor:"3,keyasint,omitempty" json:"profileData,omitempty"`
}

// AuthTokensV0 is a bearer session, the only kind the first release knew.
type AuthTokensV0 struct {
	AuthProfileID string `cbor:"1,keyasint,omitempty" json:"authProfileId"`
	AccessJwt     string `cbor:"2,keyasint,omitempty" json:"accessJwt"`
	RefreshJwt    string `cbor:"3,keyasint,omitempty" json:"refreshJwt"`
}

// NavigationV0 is still the current navigation shape.
type NavigationV0 struct {
	ActiveNav  int           `cbor:"1,keyasint,omitempty" json:"activeNav"`
	BackStacks []BackStackV0 `cbor:"2,keyasint,omitempty" json:"backStacks,omitempty"`
}

// BackStackV0 holds opaque route strings, oldest first.
type BackStackV0 struct {
	Routes []string `cbor:"1,keyasint,omitempty" json:"routes,omitempty"`
}

type ProfileDataV0 struct {
	Preferences   PreferencesV0   `cbor:"1,keyasint,omitempty" json:"preferences"`
	Notifications NotificationsV0 `cbor:"2,keyasint,omitempty" json:"notifications"`
}

// PreferencesV0 mixes synced preferences with the single device-local field
// of the time.
type PreferencesV0 struct {
	TimelinePreferences       []TimelinePreferenceV0     `cbor:"1,keyasint,omitempty" json:"timelinePreferences,omitempty"`
	ContentLabelPreferences   []ContentLabelPreferenceV0 `cbor:"2,keyasint,omitempty" json:"contentLabelPreferences,omitempty"`
	LastViewedHomeTimelineURI string                     `cbor:"3,keyasint,omitempty" json:"lastViewedHomeTimelineUri,omitempty"`
}

type TimelinePreferenceV0 struct {
	ID            string   `cbor:"1,keyasint,omitempty" json:"id"`
	Type          string   `cbor:"2,keyasint,omitempty" json:"type"`
	Value         string   `cbor:"3,keyasint,omitempty" json:"value"`
	Pinned        bool     `cbor:"4,keyasint,omitempty" json:"pinned"`
	LastFetchedAt *Instant `cbor:"5,keyasint" json:"lastFetchedAt,omitempty"`
}

type ContentLabelPreferenceV0 struct {
	LabelerID  string `cbor:"1,keyasint,omitempty" json:"labelerId,omitempty"`
	Label      string `cbor:"2,keyasint,omitempty" json:"label"`
	Visibility string `cbor:"3,keyasint,omitempty" json:"visibility"`
}

type NotificationsV0 struct {
	LastSeen *Instant `cbor:"1,keyasint" json:"lastSeen,omitempty"`
}

func (SavedStateV0) SnapshotVersion() Version { return 0 }
func (SavedStateV0) snapshot()                {}
