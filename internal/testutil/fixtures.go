package testutil

import (
	"sessionstate/internal/savedstate"
)

// Fixture values for every released snapshot. Each one uses nil for empty
// collections so it survives a round trip through either format unchanged.

var (
	AliceID = savedstate.MustProfileID("did:plc:alice")
	BobID   = savedstate.MustProfileID("did:web:bob.example.com")

	// LegacyKey is a v0 profile key that is not a valid DID.
	LegacyKey = "alice@old-server"
)

func navigation() savedstate.NavigationV0 {
	return savedstate.NavigationV0{
		ActiveNav: 1,
		BackStacks: []savedstate.BackStackV0{
			{Routes: []string{"home", "thread/at://did:plc:alice/post/1"}},
			{Routes: []string{"search", "profile/did:web:bob.example.com"}},
			{},
		},
	}
}

func timelines() []savedstate.TimelinePreferenceV0 {
	return []savedstate.TimelinePreferenceV0{
		{ID: "following", Type: "timeline", Value: "following", Pinned: true, LastFetchedAt: savedstate.InstantPtr(1_700_000_000_000)},
		{ID: "discover", Type: "feed", Value: "at://did:plc:feeds/app.feed.generator/discover"},
	}
}

func contentLabels() []savedstate.ContentLabelPreferenceV0 {
	return []savedstate.ContentLabelPreferenceV0{
		{Label: "spam", Visibility: "hide"},
		{LabelerID: "did:plc:mod", Label: "gore", Visibility: "warn"},
	}
}

func writes() savedstate.WritesV2 {
	return savedstate.WritesV2{
		Pending: []savedstate.WritableV2{
			{Kind: "post", Payload: []byte(`{"text":"hello"}`)},
		},
		Failed: []savedstate.FailedWriteV2{
			{Writable: savedstate.WritableV2{Kind: "like", Payload: []byte{0x01, 0x02}}, FailedAt: 1_700_000_200_000, Reason: "timeout"},
		},
	}
}

func StateV0() savedstate.SavedStateV0 {
	return savedstate.SavedStateV0{
		Auth: &savedstate.AuthTokensV0{
			AuthProfileID: string(AliceID),
			AccessJwt:     "access-v0",
			RefreshJwt:    "refresh-v0",
		},
		Navigation: navigation(),
		ProfileData: map[string]savedstate.ProfileDataV0{
			string(AliceID): {
				Preferences: savedstate.PreferencesV0{
					TimelinePreferences:       timelines(),
					ContentLabelPreferences:   contentLabels(),
					LastViewedHomeTimelineURI: "following",
				},
				Notifications: savedstate.NotificationsV0{LastSeen: savedstate.InstantPtr(1_700_000_100_000)},
			},
			LegacyKey: {
				Preferences: savedstate.PreferencesV0{LastViewedHomeTimelineURI: "discover"},
			},
		},
	}
}

func StateV1() savedstate.SavedStateV1 {
	return savedstate.SavedStateV1{
		Auth: &savedstate.AuthTokensV1{
			AuthProfileID: BobID,
			AccessJwt:     "access-v1",
			RefreshJwt:    "refresh-v1",
		},
		Navigation: navigation(),
		ProfileData: map[savedstate.ProfileID]savedstate.ProfileDataV0{
			BobID: {
				Preferences: savedstate.PreferencesV0{
					TimelinePreferences:     timelines(),
					ContentLabelPreferences: contentLabels(),
				},
				Notifications: savedstate.NotificationsV0{LastSeen: savedstate.InstantPtr(0)},
			},
			AliceID: {},
		},
	}
}

func StateV2() savedstate.SavedStateV2 {
	return savedstate.SavedStateV2{
		Auth: &savedstate.AuthTokensV1{AuthProfileID: AliceID, AccessJwt: "access-v2", RefreshJwt: "refresh-v2"},
		ProfileData: map[savedstate.ProfileID]savedstate.ProfileDataV2{
			AliceID: {
				Preferences: savedstate.PreferencesV0{
					TimelinePreferences:       timelines(),
					LastViewedHomeTimelineURI: "following",
				},
				Notifications: savedstate.NotificationsV2{
					LastRead:      savedstate.InstantPtr(1_700_000_100_000),
					LastRefreshed: savedstate.InstantPtr(1_700_000_150_000),
				},
				Writes: writes(),
			},
		},
	}
}

func StateV3() savedstate.SavedStateV3 {
	return savedstate.SavedStateV3{
		Auth:       &savedstate.AuthTokensV3{Guest: &savedstate.GuestAuthV3{Server: "https://public.api.example"}},
		Navigation: navigation(),
		ProfileData: map[savedstate.ProfileID]savedstate.ProfileDataV3{
			BobID: {
				Preferences: savedstate.PreferencesV3{
					ContentLabelPreferences:   contentLabels(),
					LastViewedHomeTimelineURI: "discover",
					LabelerPreferences:        []savedstate.LabelerPreferenceV3{{LabelerID: "did:plc:mod"}},
				},
				Notifications: savedstate.NotificationsV2{LastRefreshed: savedstate.InstantPtr(1_700_000_150_000)},
				Writes:        writes(),
			},
		},
	}
}

func StateV4() savedstate.SavedStateV4 {
	return savedstate.SavedStateV4{
		Auth: &savedstate.AuthTokensV4{DPoP: &savedstate.DPoPTokensV4{
			AuthProfileID: AliceID,
			AccessToken:   "dpop-access",
			RefreshToken:  "dpop-refresh",
			Issuer:        "https://auth.example",
			ServiceURL:    "https://pds.example",
			Nonce:         "n-1",
			KeyPair:       []byte{0x30, 0x77, 0x02, 0x01},
		}},
		Navigation: navigation(),
		ProfileData: map[savedstate.ProfileID]savedstate.ProfileDataV4{
			AliceID: {
				Preferences: savedstate.PreferencesV4{
					TimelinePreferences:         timelines(),
					ContentLabelPreferences:     contentLabels(),
					LastViewedHomeTimelineURI:   "following",
					LabelerPreferences:          []savedstate.LabelerPreferenceV3{{LabelerID: "did:plc:mod"}},
					UseDynamicTheming:           true,
					RefreshHomeTimelineOnLaunch: true,
				},
				Notifications: savedstate.NotificationsV2{LastRead: savedstate.InstantPtr(1_700_000_100_000)},
				Writes:        writes(),
			},
			BobID: {
				Preferences: savedstate.PreferencesV4{UseCompactNavigation: true},
			},
		},
	}
}

func StateV5() savedstate.SavedStateV5 {
	return savedstate.SavedStateV5{
		Auth: savedstate.NewBearerAuth(savedstate.BearerTokens{
			AuthProfileID: AliceID,
			AccessJwt:     "access-v5",
			RefreshJwt:    "refresh-v5",
		}),
		Navigation: navigation(),
		ProfileData: map[savedstate.ProfileID]savedstate.ProfileDataV5{
			AliceID: {
				Preferences: savedstate.PreferencesV5{
					TimelinePreferences:     timelines(),
					ContentLabelPreferences: contentLabels(),
					LabelerPreferences:      []savedstate.LabelerPreferenceV3{{LabelerID: "did:plc:mod"}},
					Local: savedstate.LocalPreferencesV5{
						LastViewedHomeTimelineURI: "following",
						UseDynamicTheming:         true,
						AutoHideBottomNavigation:  true,
					},
				},
				Notifications: savedstate.NotificationsV2{
					LastRead:      savedstate.InstantPtr(1_700_000_100_000),
					LastRefreshed: savedstate.InstantPtr(0),
				},
				Writes: writes(),
			},
			BobID: {},
		},
	}
}

// Snapshots returns one fixture per released version, oldest first.
func Snapshots() []savedstate.Snapshot {
	return []savedstate.Snapshot{StateV0(), StateV1(), StateV2(), StateV3(), StateV4(), StateV5()}
}
