package models

// UserDocument is the aggregated view of one user across both stores.
// A group is nil, and therefore omitted, when its capability was not requested.
// Requested lists are always non-nil so they serialise as [] rather than null.
type UserDocument struct {
	Identity   *IdentityGroup   `json:"identity,omitempty"`
	Activity   *ActivityGroup   `json:"activity,omitempty"`
	Payments   *PaymentsGroup   `json:"payments,omitempty"`
	GameStats  *GameStatsGroup  `json:"gameStats,omitempty"`
	Admin      *AdminGroup      `json:"admin,omitempty"`
	Bans       *BansGroup       `json:"bans,omitempty"`
	Mutes      *MutesGroup      `json:"mutes,omitempty"`
	Servers    *ServersGroup    `json:"servers,omitempty"`
	Additional *AdditionalGroup `json:"additional,omitempty"`
}

// IdentityGroup holds the account profile. Profile is null when its lookup failed.
type IdentityGroup struct {
	Profile  *Profile `json:"profile"`
	SteamIDs []string `json:"steamIds"`
}

// ActivityGroup fields are pointers so each one can be present or omitted
// independently of its siblings.
type ActivityGroup struct {
	Log         *[]ActivityEntry `json:"log,omitempty"`
	Devices     *[]Device        `json:"devices,omitempty"`
	LoginLogs   *[]LoginLog      `json:"loginLogs,omitempty"`
	LoginTokens *[]LoginToken    `json:"loginTokens,omitempty"`
}

type PaymentsGroup struct {
	Made            *[]Payment        `json:"made,omitempty"`
	Received        *[]Payment        `json:"received,omitempty"`
	CheckoutDetails *[]CheckoutDetail `json:"checkoutDetails,omitempty"`
}

type GameStatsGroup struct {
	Stats      []PlayerStat   `json:"stats"`
	Records    []PlayerRecord `json:"records"`
	StageTimes []StageTime    `json:"stageTimes"`
	Servers    []Server       `json:"servers"`
}

type AdminGroup struct {
	Admins  []Admin  `json:"admins"`
	Servers []Server `json:"servers"`
}

type BansGroup struct {
	Bans    []Ban    `json:"bans"`
	Servers []Server `json:"servers"`
}

type MutesGroup struct {
	Mutes   []Mute   `json:"mutes"`
	Servers []Server `json:"servers"`
}

type ServersGroup struct {
	Connections []Connection `json:"connections"`
	Servers     []Server     `json:"servers"`
}

// AdditionalGroup is reserved for alt-account inference, which is not derived yet.
type AdditionalGroup struct {
	PotentialAlts []int64  `json:"potentialAlts"`
	SharedIPs     []string `json:"sharedIps"`
}
