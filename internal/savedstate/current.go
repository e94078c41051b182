package savedstate

import (
	"maps"
	"slices"
)

// Names for the current schema. When a new snapshot is added these aliases
// move to it; code outside this package only uses the aliases.
type (
	SavedState       = SavedStateV5
	ProfileData      = ProfileDataV5
	Preferences      = PreferencesV5
	LocalPreferences = LocalPreferencesV5
	Notifications    = NotificationsV2
	Writes           = WritesV2
	Writable         = WritableV2
	FailedWrite      = FailedWriteV2
	AuthTokens       = AuthTokensV4
	GuestAuth        = GuestAuthV3
	BearerTokens     = BearerTokensV3
	DPoPTokens       = DPoPTokensV4
	Navigation       = NavigationV0
	BackStack        = BackStackV0
)

// Default is the state of a fresh install: signed out, no history, no
// profiles.
func Default() SavedState {
	return SavedState{}
}

type AuthKind int

const (
	AuthNone AuthKind = iota
	AuthGuest
	AuthBearer
	AuthDPoP
)

func (k AuthKind) String() string {
	switch k {
	case AuthGuest:
		return "guest"
	case AuthBearer:
		return "bearer"
	case AuthDPoP:
		return "dpop"
	default:
		return "none"
	}
}

// Kind reports the active variant. A nil receiver or an empty union is
// AuthNone; if more than one variant is set the first in declaration order
// wins.
func (a *AuthTokensV4) Kind() AuthKind {
	switch {
	case a == nil:
		return AuthNone
	case a.Guest != nil:
		return AuthGuest
	case a.Bearer != nil:
		return AuthBearer
	case a.DPoP != nil:
		return AuthDPoP
	default:
		return AuthNone
	}
}

func NewGuestAuth(server string) *AuthTokens {
	return &AuthTokens{Guest: &GuestAuth{Server: server}}
}

func NewBearerAuth(t BearerTokens) *AuthTokens {
	return &AuthTokens{Bearer: &t}
}

func NewDPoPAuth(t DPoPTokens) *AuthTokens {
	return &AuthTokens{DPoP: &t}
}

// SignedInProfile returns the profile the session is authenticated as.
func (s SavedStateV5) SignedInProfile() (ProfileID, bool) {
	switch s.Auth.Kind() {
	case AuthBearer:
		return s.Auth.Bearer.AuthProfileID, true
	case AuthDPoP:
		return s.Auth.DPoP.AuthProfileID, true
	default:
		return "", false
	}
}

// Clone returns a deep copy that shares no memory with s.
func (s SavedStateV5) Clone() SavedStateV5 {
	out := SavedStateV5{
		Auth:       cloneAuthV4(s.Auth),
		Navigation: cloneNavigation(s.Navigation),
	}
	if s.ProfileData != nil {
		out.ProfileData = make(map[ProfileID]ProfileDataV5, len(s.ProfileData))
		for id, pd := range s.ProfileData {
			out.ProfileData[id] = pd.Clone()
		}
	}
	return out
}

func (pd ProfileDataV5) Clone() ProfileDataV5 {
	return ProfileDataV5{
		Preferences: PreferencesV5{
			TimelinePreferences:     cloneTimelines(pd.Preferences.TimelinePreferences),
			ContentLabelPreferences: slices.Clone(pd.Preferences.ContentLabelPreferences),
			LabelerPreferences:      slices.Clone(pd.Preferences.LabelerPreferences),
			Local:                   pd.Preferences.Local,
		},
		Notifications: cloneNotificationsV2(pd.Notifications),
		Writes:        cloneWritesV2(pd.Writes),
	}
}

// ProfileIDs lists the stored profiles in sorted order.
func (s SavedStateV5) ProfileIDs() []ProfileID {
	return slices.Sorted(maps.Keys(s.ProfileData))
}

// Canonical returns a deep copy with every empty slice and map set to nil,
// the form both wire formats decode to.
func (s SavedStateV5) Canonical() SavedStateV5 {
	out := s.Clone()
	if out.Auth != nil && out.Auth.DPoP != nil {
		out.Auth.DPoP.KeyPair = nilIfEmpty(out.Auth.DPoP.KeyPair)
	}
	out.Navigation.BackStacks = nilIfEmpty(out.Navigation.BackStacks)
	for i := range out.Navigation.BackStacks {
		out.Navigation.BackStacks[i].Routes = nilIfEmpty(out.Navigation.BackStacks[i].Routes)
	}
	if len(out.ProfileData) == 0 {
		out.ProfileData = nil
	}
	for id, pd := range out.ProfileData {
		pd.Preferences.TimelinePreferences = nilIfEmpty(pd.Preferences.TimelinePreferences)
		pd.Preferences.ContentLabelPreferences = nilIfEmpty(pd.Preferences.ContentLabelPreferences)
		pd.Preferences.LabelerPreferences = nilIfEmpty(pd.Preferences.LabelerPreferences)
		pd.Writes.Pending = nilIfEmpty(pd.Writes.Pending)
		for i := range pd.Writes.Pending {
			pd.Writes.Pending[i].Payload = nilIfEmpty(pd.Writes.Pending[i].Payload)
		}
		pd.Writes.Failed = nilIfEmpty(pd.Writes.Failed)
		for i := range pd.Writes.Failed {
			pd.Writes.Failed[i].Writable.Payload = nilIfEmpty(pd.Writes.Failed[i].Writable.Payload)
		}
		out.ProfileData[id] = pd
	}
	return out
}

func nilIfEmpty[S ~[]E, E any](s S) S {
	if len(s) == 0 {
		return nil
	}
	return s
}
