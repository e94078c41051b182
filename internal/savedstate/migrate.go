package savedstate

import (
	"fmt"
	"slices"
)

// Upgrade walks s forward one version at a time until it reaches
// CurrentVersion. Every step is total, so the only way out other than a
// current value is a *MigrationFailure panic for a snapshot the chain does not
// know.
func Upgrade(s Snapshot) SavedState {
	for {
		switch v := s.(type) {
		case SavedStateV0:
			s = v.Migrate()
		case SavedStateV1:
			s = v.Migrate()
		case SavedStateV2:
			s = v.Migrate()
		case SavedStateV3:
			s = v.Migrate()
		case SavedStateV4:
			s = v.Migrate()
		case SavedStateV5:
			return v
		case nil:
			panic(&MigrationFailure{Reason: "nil snapshot"})
		default:
			panic(&MigrationFailure{Snapshot: s, Reason: fmt.Sprintf("no migration step for %T", s)})
		}
	}
}

// Migrate parses every profile key into a ProfileID. Keys that do not parse
// are kept under LegacyProfileID(key); the auth profile reference is
// converted the same way so it still points at its profile. The conversion is
// injective, so no two keys can merge.
func (s SavedStateV0) Migrate() SavedStateV1 {
	out := SavedStateV1{Navigation: cloneNavigation(s.Navigation)}
	if s.Auth != nil {
		out.Auth = &AuthTokensV1{
			AuthProfileID: profileIDFromKey(s.Auth.AuthProfileID),
			AccessJwt:     s.Auth.AccessJwt,
			RefreshJwt:    s.Auth.RefreshJwt,
		}
	}
	if len(s.ProfileData) > 0 {
		out.ProfileData = make(map[ProfileID]ProfileDataV0, len(s.ProfileData))
		for k, pd := range s.ProfileData {
			out.ProfileData[profileIDFromKey(k)] = cloneProfileDataV0(pd)
		}
	}
	return out
}

// Migrate adds an empty write queue and renames LastSeen to LastRead.
// LastRefreshed defaults to nil.
func (s SavedStateV1) Migrate() SavedStateV2 {
	out := SavedStateV2{Navigation: cloneNavigation(s.Navigation)}
	if s.Auth != nil {
		auth := *s.Auth
		out.Auth = &auth
	}
	if len(s.ProfileData) > 0 {
		out.ProfileData = make(map[ProfileID]ProfileDataV2, len(s.ProfileData))
		for id, pd := range s.ProfileData {
			out.ProfileData[id] = ProfileDataV2{
				Preferences: clonePreferencesV0(pd.Preferences),
				Notifications: NotificationsV2{
					LastRead: cloneInstant(pd.Notifications.LastSeen),
				},
			}
		}
	}
	return out
}

// Migrate wraps the bearer session in the auth union. LabelerPreferences
// defaults to empty.
func (s SavedStateV2) Migrate() SavedStateV3 {
	out := SavedStateV3{Navigation: cloneNavigation(s.Navigation)}
	if s.Auth != nil {
		out.Auth = &AuthTokensV3{Bearer: &BearerTokensV3{
			AuthProfileID: s.Auth.AuthProfileID,
			AccessJwt:     s.Auth.AccessJwt,
			RefreshJwt:    s.Auth.RefreshJwt,
		}}
	}
	if len(s.ProfileData) > 0 {
		out.ProfileData = make(map[ProfileID]ProfileDataV3, len(s.ProfileData))
		for id, pd := range s.ProfileData {
			p := clonePreferencesV0(pd.Preferences)
			out.ProfileData[id] = ProfileDataV3{
				Preferences: PreferencesV3{
					TimelinePreferences:       p.TimelinePreferences,
					ContentLabelPreferences:   p.ContentLabelPreferences,
					LastViewedHomeTimelineURI: p.LastViewedHomeTimelineURI,
				},
				Notifications: cloneNotificationsV2(pd.Notifications),
				Writes:        cloneWritesV2(pd.Writes),
			}
		}
	}
	return out
}

// Migrate copies the auth union as is (no DPoP session can exist yet) and
// defaults UseDynamicTheming, RefreshHomeTimelineOnLaunch and
// UseCompactNavigation to false.
func (s SavedStateV3) Migrate() SavedStateV4 {
	out := SavedStateV4{Navigation: cloneNavigation(s.Navigation)}
	if s.Auth != nil {
		out.Auth = &AuthTokensV4{}
		if s.Auth.Guest != nil {
			g := *s.Auth.Guest
			out.Auth.Guest = &g
		}
		if s.Auth.Bearer != nil {
			b := *s.Auth.Bearer
			out.Auth.Bearer = &b
		}
	}
	if len(s.ProfileData) > 0 {
		out.ProfileData = make(map[ProfileID]ProfileDataV4, len(s.ProfileData))
		for id, pd := range s.ProfileData {
			out.ProfileData[id] = ProfileDataV4{
				Preferences: PreferencesV4{
					TimelinePreferences:       cloneTimelines(pd.Preferences.TimelinePreferences),
					ContentLabelPreferences:   slices.Clone(pd.Preferences.ContentLabelPreferences),
					LastViewedHomeTimelineURI: pd.Preferences.LastViewedHomeTimelineURI,
					LabelerPreferences:        slices.Clone(pd.Preferences.LabelerPreferences),
				},
				Notifications: cloneNotificationsV2(pd.Notifications),
				Writes:        cloneWritesV2(pd.Writes),
			}
		}
	}
	return out
}

// Migrate moves the device-only fields into Preferences.Local.
// AutoHideBottomNavigation defaults to false.
func (s SavedStateV4) Migrate() SavedStateV5 {
	out := SavedStateV5{
		Auth:       cloneAuthV4(s.Auth),
		Navigation: cloneNavigation(s.Navigation),
	}
	if len(s.ProfileData) > 0 {
		out.ProfileData = make(map[ProfileID]ProfileDataV5, len(s.ProfileData))
		for id, pd := range s.ProfileData {
			p := pd.Preferences
			out.ProfileData[id] = ProfileDataV5{
				Preferences: PreferencesV5{
					TimelinePreferences:     cloneTimelines(p.TimelinePreferences),
					ContentLabelPreferences: slices.Clone(p.ContentLabelPreferences),
					LabelerPreferences:      slices.Clone(p.LabelerPreferences),
					Local: LocalPreferencesV5{
						LastViewedHomeTimelineURI:   p.LastViewedHomeTimelineURI,
						RefreshHomeTimelineOnLaunch: p.RefreshHomeTimelineOnLaunch,
						UseDynamicTheming:           p.UseDynamicTheming,
						UseCompactNavigation:        p.UseCompactNavigation,
					},
				},
				Notifications: cloneNotificationsV2(pd.Notifications),
				Writes:        cloneWritesV2(pd.Writes),
			}
		}
	}
	return out
}

func cloneNavigation(n NavigationV0) NavigationV0 {
	out := NavigationV0{ActiveNav: n.ActiveNav}
	if n.BackStacks != nil {
		out.BackStacks = make([]BackStackV0, len(n.BackStacks))
		for i, bs := range n.BackStacks {
			out.BackStacks[i] = BackStackV0{Routes: slices.Clone(bs.Routes)}
		}
	}
	return out
}

func cloneInstant(i *Instant) *Instant {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

func cloneTimelines(in []TimelinePreferenceV0) []TimelinePreferenceV0 {
	out := slices.Clone(in)
	for i := range out {
		out[i].LastFetchedAt = cloneInstant(out[i].LastFetchedAt)
	}
	return out
}

func clonePreferencesV0(p PreferencesV0) PreferencesV0 {
	return PreferencesV0{
		TimelinePreferences:       cloneTimelines(p.TimelinePreferences),
		ContentLabelPreferences:   slices.Clone(p.ContentLabelPreferences),
		LastViewedHomeTimelineURI: p.LastViewedHomeTimelineURI,
	}
}

func cloneProfileDataV0(pd ProfileDataV0) ProfileDataV0 {
	return ProfileDataV0{
		Preferences:   clonePreferencesV0(pd.Preferences),
		Notifications: NotificationsV0{LastSeen: cloneInstant(pd.Notifications.LastSeen)},
	}
}

func cloneNotificationsV2(n NotificationsV2) NotificationsV2 {
	return NotificationsV2{
		LastRead:      cloneInstant(n.LastRead),
		LastRefreshed: cloneInstant(n.LastRefreshed),
	}
}

func cloneWritable(w WritableV2) WritableV2 {
	return WritableV2{Kind: w.Kind, Payload: slices.Clone(w.Payload)}
}

func cloneWritesV2(w WritesV2) WritesV2 {
	var out WritesV2
	if w.Pending != nil {
		out.Pending = make([]WritableV2, len(w.Pending))
		for i, p := range w.Pending {
			out.Pending[i] = cloneWritable(p)
		}
	}
	if w.Failed != nil {
		out.Failed = make([]FailedWriteV2, len(w.Failed))
		for i, f := range w.Failed {
			out.Failed[i] = FailedWriteV2{Writable: cloneWritable(f.Writable), FailedAt: f.FailedAt, Reason: f.Reason}
		}
	}
	return out
}

func cloneAuthV4(a *AuthTokensV4) *AuthTokensV4 {
	if a == nil {
		return nil
	}
	out := &AuthTokensV4{}
	if a.Guest != nil {
		g := *a.Guest
		out.Guest = &g
	}
	if a.Bearer != nil {
		b := *a.Bearer
		out.Bearer = &b
	}
	if a.DPoP != nil {
		d := *a.DPoP
		d.KeyPair = slices.Clone(a.DPoP.KeyPair)
		out.DPoP = &d
	}
	return out
}
