package savedstate

// SavedStateV3 turns auth into a tagged union and adds labeler preferences.
type SavedStateV3 struct {
	Auth        *AuthTokensV3               `cbor:"1,keyasint" json:"auth"`
	Navigation  NavigationV0                `cbor:"2,keyasint,omitempty" json:"navigation"`
	ProfileData map[ProfileID]ProfileDataV3 `cbor:"3,keyasint,omitempty" json:"profileData,omitempty"`
}

// AuthTokensV3 holds exactly one non-nil variant.
type AuthTokensV3 struct {
	Guest  *GuestAuthV3    `cbor:"1,keyasint" json:"guest,omitempty"`
	Bearer *BearerTokensV3 `cbor:"2,keyasint" json:"bearer,omitempty"`
}

// GuestAuthV3 is a signed-out session against a public service.
type GuestAuthV3 struct {
	Server string `cbor:"1,keyasint,omitempty" json:"server,omitempty"`
}

type BearerTokensV3 struct {
	AuthProfileID ProfileID `cbor:"1,keyasint,omitempty" json:"authProfileId"`
	AccessJwt     string    `cbor:"2,keyasint,omitempty" json:"accessJwt"`
	RefreshJwt    string    `cbor:"3,keyasint,omitempty" json:"refreshJwt"`
}

type ProfileDataV3 struct {
	Preferences   PreferencesV3   `cbor:"1,keyasint,omitempty" json:"preferences"`
	Notifications NotificationsV2 `cbor:"2,keyasint,omitempty" json:"notifications"`
	Writes        WritesV2        `cbor:"3,keyasint,omitempty" json:"writes"`
}

type PreferencesV3 struct {
	TimelinePreferences       []TimelinePreferenceV0     `cbor:"1,keyasint,omitempty" json:"timelinePreferences,omitempty"`
	ContentLabelPreferences   []ContentLabelPreferenceV0 `cbor:"2,keyasint,omitempty" json:"contentLabelPreferences,omitempty"`
	LastViewedHomeTimelineURI string                     `cbor:"3,keyasint,omitempty" json:"lastViewedHomeTimelineUri,omitempty"`
	LabelerPreferences        []LabelerPreferenceV3      `cbor:"4,keyasint,omitempty" json:"labelerPreferences,omitempty"`
}

type LabelerPreferenceV3 struct {
	LabelerID ProfileID `cbor:"1,keyasint,omitempty" json:"labelerId"`
}

func (SavedStateV3) SnapshotVersion() Version { return 3 }
func (SavedStateV3) snapshot()                {}
