package models

import "time"

// ---------- Identity store ----------

type Profile struct {
	ID          int64      `db:"id" json:"id"`
	Username    string     `db:"username" json:"username"`
	Email       string     `db:"email" json:"email"`
	AvatarURL   *string    `db:"avatar_url" json:"avatarUrl,omitempty"`
	Role        string     `db:"role" json:"role"`
	SteamID     *string    `db:"steam_id" json:"steamId,omitempty"`
	SteamID64   *string    `db:"steam_id64" json:"steamId64,omitempty"`
	SteamID3    *string    `db:"steam_id3" json:"steamId3,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdTimestamp"`
	LastLoginAt *time.Time `db:"last_login_at" json:"lastLoginTimestamp,omitempty"`
}

type ActivityEntry struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"-"`
	Action    string    `db:"action" json:"action"`
	Details   *string   `db:"details" json:"details,omitempty"`
	IPAddress *string   `db:"ip_address" json:"ipAddress,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdTimestamp"`
}

// Device is a browser or client the user signed in from. IPs is filled by a
// follow-up lookup against device_ips.
type Device struct {
	ID          int64      `db:"id" json:"id"`
	UserID      int64      `db:"user_id" json:"-"`
	Name        string     `db:"name" json:"name"`
	UserAgent   *string    `db:"user_agent" json:"userAgent,omitempty"`
	LastIP      *string    `db:"last_ip" json:"lastIp,omitempty"`
	FirstSeenAt time.Time  `db:"first_seen_at" json:"firstSeenTimestamp"`
	LastSeenAt  time.Time  `db:"last_seen_at" json:"lastSeenTimestamp"`
	IPs         []DeviceIP `db:"-" json:"ips"`
}

type DeviceIP struct {
	DeviceID    int64     `db:"device_id" json:"-"`
	IPAddress   string    `db:"ip_address" json:"ipAddress"`
	FirstSeenAt time.Time `db:"first_seen_at" json:"firstSeenTimestamp"`
	LastSeenAt  time.Time `db:"last_seen_at" json:"lastSeenTimestamp"`
}

type LoginLog struct {
	ID        int64     `db:"id" json:"id"`
	IPAddress *string   `db:"ip_address" json:"ipAddress,omitempty"`
	UserAgent *string   `db:"user_agent" json:"userAgent,omitempty"`
	Success   bool      `db:"success" json:"success"`
	CreatedAt time.Time `db:"created_at" json:"createdTimestamp"`
}

// LoginToken carries session metadata only. Token values are never selected.
type LoginToken struct {
	ID         int64     `db:"id" json:"id"`
	DeviceName *string   `db:"device_name" json:"deviceName,omitempty"`
	Revoked    bool      `db:"revoked" json:"revoked"`
	CreatedAt  time.Time `db:"created_at" json:"createdTimestamp"`
	ExpiresAt  time.Time `db:"expires_at" json:"expiresTimestamp"`
}

// Payment ids are text in the identity store; see the query package for how
// they are compared against the numeric user id.
type Payment struct {
	ID          int64     `db:"id" json:"id"`
	PayerID     string    `db:"payer_id" json:"payerId"`
	RecipientID string    `db:"recipient_id" json:"recipientId"`
	Amount      float64   `db:"amount" json:"amount"`
	Currency    string    `db:"currency" json:"currency"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"createdTimestamp"`
}

type CheckoutDetail struct {
	ID        int64     `db:"id" json:"id"`
	Provider  string    `db:"provider" json:"provider"`
	Reference *string   `db:"reference" json:"reference,omitempty"`
	Amount    float64   `db:"amount" json:"amount"`
	Currency  string    `db:"currency" json:"currency"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdTimestamp"`
}

// ---------- Gameplay store ----------

type PlayerStat struct {
	ID              int64     `db:"id" json:"id"`
	SteamID         string    `db:"steam_id" json:"steamId"`
	ServerID        int64     `db:"server_id" json:"serverId"`
	Kills           int64     `db:"kills" json:"kills"`
	Deaths          int64     `db:"deaths" json:"deaths"`
	Headshots       int64     `db:"headshots" json:"headshots"`
	PlaytimeSeconds int64     `db:"playtime_seconds" json:"playtimeSeconds"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedTimestamp"`
}

type PlayerRecord struct {
	ID        int64     `db:"id" json:"id"`
	SteamID   string    `db:"steam_id" json:"steamId"`
	ServerID  int64     `db:"server_id" json:"serverId"`
	Map       string    `db:"map" json:"map"`
	Style     string    `db:"style" json:"style"`
	TimeMs    int64     `db:"time_ms" json:"timeMs"`
	CreatedAt time.Time `db:"created_at" json:"createdTimestamp"`
}

type StageTime struct {
	ID        int64     `db:"id" json:"id"`
	SteamID   string    `db:"steam_id" json:"steamId"`
	ServerID  int64     `db:"server_id" json:"serverId"`
	Map       string    `db:"map" json:"map"`
	Stage     int       `db:"stage" json:"stage"`
	TimeMs    int64     `db:"time_ms" json:"timeMs"`
	CreatedAt time.Time `db:"created_at" json:"createdTimestamp"`
}

type Admin struct {
	ID        int64     `db:"id" json:"id"`
	AuthID    string    `db:"authid" json:"authId"`
	Name      string    `db:"name" json:"name"`
	Flags     string    `db:"flags" json:"flags"`
	Immunity  int       `db:"immunity" json:"immunity"`
	ServerID  *int64    `db:"server_id" json:"serverId,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdTimestamp"`
}

type Ban struct {
	ID            int64      `db:"id" json:"id"`
	AuthID        *string    `db:"authid" json:"authId,omitempty"`
	IP            *string    `db:"ip" json:"ip,omitempty"`
	Name          string     `db:"name" json:"name"`
	Reason        string     `db:"reason" json:"reason"`
	LengthMinutes int64      `db:"length_minutes" json:"lengthMinutes"`
	AdminAuthID   *string    `db:"admin_authid" json:"adminAuthId,omitempty"`
	ServerID      *int64     `db:"server_id" json:"serverId,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"createdTimestamp"`
	RemovedAt     *time.Time `db:"removed_at" json:"removedTimestamp,omitempty"`
}

type Mute struct {
	ID            int64      `db:"id" json:"id"`
	AuthID        string     `db:"authid" json:"authId"`
	Name          string     `db:"name" json:"name"`
	Type          string     `db:"type" json:"type"`
	Reason        string     `db:"reason" json:"reason"`
	LengthMinutes int64      `db:"length_minutes" json:"lengthMinutes"`
	AdminAuthID   *string    `db:"admin_authid" json:"adminAuthId,omitempty"`
	ServerID      *int64     `db:"server_id" json:"serverId,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"createdTimestamp"`
	RemovedAt     *time.Time `db:"removed_at" json:"removedTimestamp,omitempty"`
}

type Connection struct {
	ID             int64      `db:"id" json:"id"`
	SteamID        string     `db:"steam_id" json:"steamId"`
	ServerID       int64      `db:"server_id" json:"serverId"`
	IP             *string    `db:"ip" json:"ip,omitempty"`
	ConnectedAt    time.Time  `db:"connected_at" json:"connectedTimestamp"`
	DisconnectedAt *time.Time `db:"disconnected_at" json:"disconnectedTimestamp,omitempty"`
}

type Server struct {
	ID      int64  `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Address string `db:"address" json:"address"`
	Port    int    `db:"port" json:"port"`
	Enabled bool   `db:"enabled" json:"enabled"`
}
