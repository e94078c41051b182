package savedstate

// SavedStateV4 adds DPoP sessions and the first device-only toggles, still
// stored inline with the synced preferences.
type SavedStateV4 struct {
	Auth        *AuthTokensV4               `cbor:"1,keyasint" json:"auth"`
	Navigation  NavigationV0                `cbor:"2,keyasint,omitempty" json:"navigation"`
	ProfileData map[ProfileID]ProfileDataV4 `cbor:"3,keyasint,omitempty" json:"profileData,omitempty"`
}

// AuthTokensV4 holds exactly one non-nil variant. A nil *AuthTokensV4 is the
// signed-out state.
type AuthTokensV4 struct {
	Guest  *GuestAuthV3    `cbor:"1,keyasint" json:"guest,omitempty"`
	Bearer *BearerTokensV3 `cbor:"2,keyasint" json:"bearer,omitempty"`
	DPoP   *DPoPTokensV4   `cbor:"3,keyasint" json:"dpop,omitempty"`
}

type DPoPTokensV4 struct {
	AuthProfileID ProfileID `cbor:"1,keyasint,omitempty" json:"authProfileId"`
	AccessToken   string    `cbor:"2,keyasint,omitempty" json:"accessToken"`
	RefreshToken  string    `cbor:"3,keyasint,omitempty" json:"refreshToken"`
	Issuer        string    `cbor:"4,keyasint,omitempty" json:"issuer,omitempty"`
	ServiceURL    string    `cbor:"5,keyasint,omitempty" json:"serviceUrl,omitempty"`
	Nonce         string    `cbor:"6,keyasint,omitempty" json:"nonce,omitempty"`
	KeyPair       []byte    `cbor:"7,keyasint,omitempty" json:"keyPair,omitempty"`
}

type ProfileDataV4 struct {
	Preferences   PreferencesV4   `cbor:"1,keyasint,omitempty" json:"preferences"`
	Notifications NotificationsV2 `cbor:"2,keyasint,omitempty" json:"notifications"`
	Writes        WritesV2        `cbor:"3,keyasint,omitempty" json:"writes"`
}

type PreferencesV4 struct {
	TimelinePreferences         []TimelinePreferenceV0     `cbor:"1,keyasint,omitempty" json:"timelinePreferences,omitempty"`
	ContentLabelPreferences     []ContentLabelPreferenceV0 `cbor:"2,keyasint,omitempty" json:"contentLabelPreferences,omitempty"`
	LastViewedHomeTimelineURI   string                     `cbor:"3,keyasint,omitempty" json:"lastViewedHomeTimelineUri,omitempty"`
	LabelerPreferences          []LabelerPreferenceV3      `cbor:"4,keyasint,omitempty" json:"labelerPreferences,omitempty"`
	UseDynamicTheming           bool                       `cbor:"5,keyasint,omitempty" json:"useDynamicTheming"`
	RefreshHomeTimelineOnLaunch bool                       `cbor:"6,keyasint,omitempty" json:"refreshHomeTimelineOnLaunch"`
	UseCompactNavigation        bool                       `cbor:"7,keyasint,omitempty" json:"useCompactNavigation"`
}

func (SavedStateV4) SnapshotVersion() Version { return 4 }
func (SavedStateV4) snapshot()                {}
