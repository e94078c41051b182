package savedstate_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessionstate/internal/savedstate"
	"sessionstate/internal/testutil"
)

func TestSavedStateV0_Migrate_ParsesProfileKeys(t *testing.T) {
	got := testutil.StateV0().Migrate()

	require.Len(t, got.ProfileData, 2)
	assert.Contains(t, got.ProfileData, testutil.AliceID)
	legacy := savedstate.LegacyProfileID(testutil.LegacyKey)
	require.Contains(t, got.ProfileData, legacy)
	assert.Equal(t, "discover", got.ProfileData[legacy].Preferences.LastViewedHomeTimelineURI)

	require.NotNil(t, got.Auth)
	assert.Equal(t, testutil.AliceID, got.Auth.AuthProfileID)
	assert.Equal(t, "access-v0", got.Auth.AccessJwt)
	assert.Equal(t, "refresh-v0", got.Auth.RefreshJwt)
}

func TestSavedStateV0_Migrate_AuthFollowsFallbackKey(t *testing.T) {
	in := savedstate.SavedStateV0{
		Auth:        &savedstate.AuthTokensV0{AuthProfileID: testutil.LegacyKey},
		ProfileData: map[string]savedstate.ProfileDataV0{testutil.LegacyKey: {}},
	}
	got := in.Migrate()

	require.NotNil(t, got.Auth)
	assert.True(t, got.Auth.AuthProfileID.IsLegacy())
	assert.Contains(t, got.ProfileData, got.Auth.AuthProfileID)
}

func TestSavedStateV0_Migrate_EmptyState(t *testing.T) {
	got := savedstate.SavedStateV0{}.Migrate()
	assert.Equal(t, savedstate.SavedStateV1{}, got)
}

func TestSavedStateV0_Migrate_DoesNotShareMemory(t *testing.T) {
	in := testutil.StateV0()
	out := in.Migrate()

	out.Navigation.BackStacks[0].Routes[0] = "changed"
	*out.ProfileData[testutil.AliceID].Preferences.TimelinePreferences[0].LastFetchedAt = 1
	out.Auth.AccessJwt = "changed"

	if diff := cmp.Diff(testutil.StateV0(), in); diff != "" {
		t.Errorf("input mutated (-want +got):\n%s", diff)
	}
}

func TestSavedStateV1_Migrate_Defaults(t *testing.T) {
	in := testutil.StateV1()
	got := in.Migrate()

	require.Len(t, got.ProfileData, len(in.ProfileData))
	bob := got.ProfileData[testutil.BobID]
	assert.Equal(t, in.ProfileData[testutil.BobID].Notifications.LastSeen, bob.Notifications.LastRead)
	assert.Nil(t, bob.Notifications.LastRefreshed)
	assert.Equal(t, savedstate.WritesV2{}, bob.Writes)
	assert.Equal(t, in.ProfileData[testutil.BobID].Preferences, bob.Preferences)

	alice := got.ProfileData[testutil.AliceID]
	assert.Nil(t, alice.Notifications.LastRead)
	assert.Equal(t, in.Auth, got.Auth)
	assert.NotSame(t, in.Auth, got.Auth)
}

func TestSavedStateV2_Migrate_WrapsBearer(t *testing.T) {
	in := testutil.StateV2()
	got := in.Migrate()

	require.NotNil(t, got.Auth)
	assert.Nil(t, got.Auth.Guest)
	require.NotNil(t, got.Auth.Bearer)
	assert.Equal(t, savedstate.BearerTokensV3{AuthProfileID: testutil.AliceID, AccessJwt: "access-v2", RefreshJwt: "refresh-v2"}, *got.Auth.Bearer)

	alice := got.ProfileData[testutil.AliceID]
	assert.Nil(t, alice.Preferences.LabelerPreferences)
	assert.Equal(t, in.ProfileData[testutil.AliceID].Writes, alice.Writes)
	assert.Equal(t, in.ProfileData[testutil.AliceID].Notifications, alice.Notifications)
}

func TestSavedStateV2_Migrate_SignedOutStaysSignedOut(t *testing.T) {
	got := savedstate.SavedStateV2{}.Migrate()
	assert.Nil(t, got.Auth)
}

func TestSavedStateV3_Migrate_Defaults(t *testing.T) {
	in := testutil.StateV3()
	got := in.Migrate()

	require.NotNil(t, got.Auth)
	assert.Equal(t, savedstate.AuthGuest, got.Auth.Kind())
	assert.Equal(t, "https://public.api.example", got.Auth.Guest.Server)
	assert.Nil(t, got.Auth.DPoP)

	bob := got.ProfileData[testutil.BobID]
	assert.False(t, bob.Preferences.UseDynamicTheming)
	assert.False(t, bob.Preferences.RefreshHomeTimelineOnLaunch)
	assert.False(t, bob.Preferences.UseCompactNavigation)
	assert.Equal(t, in.ProfileData[testutil.BobID].Preferences.LabelerPreferences, bob.Preferences.LabelerPreferences)
	assert.Equal(t, "discover", bob.Preferences.LastViewedHomeTimelineURI)
}

func TestSavedStateV4_Migrate_MovesLocalFlags(t *testing.T) {
	in := testutil.StateV4()
	got := in.Migrate()

	alice := got.ProfileData[testutil.AliceID].Preferences
	assert.Equal(t, savedstate.LocalPreferencesV5{
		LastViewedHomeTimelineURI:   "following",
		RefreshHomeTimelineOnLaunch: true,
		UseDynamicTheming:           true,
	}, alice.Local)
	assert.Equal(t, in.ProfileData[testutil.AliceID].Preferences.TimelinePreferences, alice.TimelinePreferences)
	assert.Equal(t, in.ProfileData[testutil.AliceID].Preferences.LabelerPreferences, alice.LabelerPreferences)

	bob := got.ProfileData[testutil.BobID].Preferences
	assert.True(t, bob.Local.UseCompactNavigation)
	assert.False(t, bob.Local.AutoHideBottomNavigation)

	require.Equal(t, savedstate.AuthDPoP, got.Auth.Kind())
	assert.Equal(t, *in.Auth.DPoP, *got.Auth.DPoP)
}

func TestUpgrade_CurrentIsIdentity(t *testing.T) {
	in := testutil.StateV5()
	assert.Equal(t, in, savedstate.Upgrade(in))
	assert.Equal(t, savedstate.Default(), savedstate.Upgrade(savedstate.Default()))
}

func TestUpgrade_WalksEveryStep(t *testing.T) {
	want := testutil.StateV0().Migrate().Migrate().Migrate().Migrate().Migrate()
	assert.Equal(t, want, savedstate.Upgrade(testutil.StateV0()))

	for _, s := range testutil.Snapshots() {
		got := savedstate.Upgrade(s)
		assert.Equal(t, savedstate.CurrentVersion, got.SnapshotVersion())
	}
}
