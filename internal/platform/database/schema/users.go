// Copyright (c) 2026 GenrA. All rights reserved.

package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table       string
	ID          string
	Username    string
	Email       string
	Password    string
	DisplayName string
	AvatarURL   string
	Bio         string
	Website     string
	Role        string
	IsVerified  string
	Coins       string
	BannedAt    string
	BanReason   string
	CreatedAt   string
	UpdatedAt   string
	DeletedAt   string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:       "users.account",
	ID:          "id",
	Username:    "username",
	Email:       "email",
	Password:    "passwordhash",
	DisplayName: "displayname",
	AvatarURL:   "avatarurl",
	Bio:         "bio",
	Website:     "website",
	Role:        "role",
	IsVerified:  "isverified",
	Coins:       "coins",
	BannedAt:    "bannedat",
	BanReason:   "banreason",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
	DeletedAt:   "deletedat",
}

// UserIdentityTable represents the 'users.identity' table (OAuth links)
type UserIdentityTable struct {
	Table     string
	Provider  string
	Subject   string
	UserID    string
	Email     string
	CreatedAt string
}

// UserIdentity is the schema definition for users.identity
var UserIdentity = UserIdentityTable{
	Table:     "users.identity",
	Provider:  "provider",
	Subject:   "subject",
	UserID:    "userid",
	Email:     "email",
	CreatedAt: "createdat",
}

// UserSessionTable represents the 'users.session' table
type UserSessionTable struct {
	Table     string
	ID        string
	UserID    string
	TokenHash string
	IPAddress string
	UserAgent string
	IsRevoked string
	ExpiresAt string
	CreatedAt string
}

// UserSession is the schema definition for users.session
var UserSession = UserSessionTable{
	Table:     "users.session",
	ID:        "id",
	UserID:    "userid",
	TokenHash: "tokenhash",
	IPAddress: "ipaddress",
	UserAgent: "useragent",
	IsRevoked: "isrevoked",
	ExpiresAt: "expiresat",
	CreatedAt: "createdat",
}

// UserReadingPreferenceTable represents the 'users.readingpreference' table
type UserReadingPreferenceTable struct {
	Table       string
	UserID      string
	FontSize    string
	Theme       string
	LineSpacing string
	FontFamily  string
	UpdatedAt   string
}

// UserReadingPreference is the schema definition for users.readingpreference
var UserReadingPreference = UserReadingPreferenceTable{
	Table:       "users.readingpreference",
	UserID:      "userid",
	FontSize:    "fontsize",
	Theme:       "theme",
	LineSpacing: "linespacing",
	FontFamily:  "fontfamily",
	UpdatedAt:   "updatedat",
}

// UserInterestTable represents the 'users.interest' table
type UserInterestTable struct {
	Table     string
	UserID    string
	GenreID   string
	CreatedAt string
}

// UserInterest is the schema definition for users.interest
var UserInterest = UserInterestTable{
	Table:     "users.interest",
	UserID:    "userid",
	GenreID:   "genreid",
	CreatedAt: "createdat",
}
