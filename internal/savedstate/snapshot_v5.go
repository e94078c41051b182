package savedstate

// SavedStateV5 moves device-only toggles out of the synced preferences into
// Preferences.Local.
type SavedStateV5 struct {
	Auth        *AuthTokensV4               `cbor:"1,keyasint" json:"auth"`
	Navigation  NavigationV0                `cbor:"2,keyasint,omitempty" json:"navigation"`
	ProfileData map[ProfileID]ProfileDataV5 `cbor:"3,keyasint,omitempty" json:"profileData,omitempty"`
}

type ProfileDataV5 struct {
	Preferences   PreferencesV5   `cbor:"1,keyasint,omitempty" json:"preferences"`
	Notifications NotificationsV2 `cbor:"2,keyasint,omitempty" json:"notifications"`
	Writes        WritesV2        `cbor:"3,keyasint,omitempty" json:"writes"`
}

type PreferencesV5 struct {
	TimelinePreferences     []TimelinePreferenceV0     `cbor:"1,keyasint,omitempty" json:"timelinePreferences,omitempty"`
	ContentLabelPreferences []ContentLabelPreferenceV0 `cbor:"2,keyasint,omitempty" json:"contentLabelPreferences,omitempty"`
	LabelerPreferences      []LabelerPreferenceV3      `cbor:"3,keyasint,omitempty" json:"labelerPreferences,omitempty"`
	Local                   LocalPreferencesV5         `cbor:"4,keyasint,omitempty" json:"local"`
}

// LocalPreferencesV5 never leaves the device.
type LocalPreferencesV5 struct {
	LastViewedHomeTimelineURI   string `cbor:"1,keyasint,omitempty" json:"lastViewedHomeTimelineUri,omitempty"`
	RefreshHomeTimelineOnLaunch bool   `cbor:"2,keyasint,omitempty" json:"refreshHomeTimelineOnLaunch"`
	UseDynamicTheming           bool   `cbor:"3,keyasint,omitempty" json:"useDynamicTheming"`
	UseCompactNavigation        bool   `cbor:"4,keyasint,omitempty" json:"useCompactNavigation"`
	AutoHideBottomNavigation    bool   `cbor:"5,keyasint,omitempty" json:"autoHideBottomNavigation"`
}

func (SavedStateV5) SnapshotVersion() Version { return 5 }
func (SavedStateV5) snapshot()                {}
