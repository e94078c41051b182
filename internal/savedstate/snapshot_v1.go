package savedstate

// SavedStateV1 keys profile data by typed ProfileID.
type SavedStateV1 struct {
	Auth        *AuthTokensV1               `cbor:"1,keyasint" json:"auth"`
	Navigation  NavigationV0                `cbor:"2,keyasint,omitempty" json:"navigation"`
	ProfileData map[ProfileID]ProfileDataV0 `cbor:"3,keyasint,omitempty" json:"profileData,omitempty"`
}

type AuthTokensV1 struct {
	AuthProfileID ProfileID `cbor:"1,keyasint,omitempty" json:"authProfileId"`
	AccessJwt     string    `cbor:"2,keyasint,omitempty" json:"accessJwt"`
	RefreshJwt    string    `cbor:"3,keyasint,omitempty" json:"refreshJwt"`
}

func (SavedStateV1) SnapshotVersion() Version { return 1 }
func (SavedStateV1) snapshot()                {}
