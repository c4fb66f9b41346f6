package scraper

import "time"

// RawProfile 抓取端返回的账号主页信息
type RawProfile struct {
	Username       string    `json:"username"`
	FullName       string    `json:"fullName"`
	Biography      string    `json:"biography"`
	FollowerCount  int64     `json:"followerCount"`
	FollowingCount int64     `json:"followingCount"`
	MediaCount     int64     `json:"mediaCount"`
	IsVerified     bool      `json:"isVerified"`
	IsPrivate      bool      `json:"isPrivate"`
	ProfilePicURL  string    `json:"profilePicUrl"`
	CreatedAt      time.Time `json:"createdAt"`
}

// RawPost 抓取端返回的单条帖子，字段可能缺失
type RawPost struct {
	ExternalID   string       `json:"externalId"`
	Caption      string       `json:"caption"`
	MediaType    string       `json:"mediaType"`
	MediaURL     string       `json:"mediaUrl"`
	ThumbnailURL string       `json:"thumbnailUrl"`
	LikeCount    float64      `json:"likeCount"`
	CommentCount float64      `json:"commentCount"`
	ShareCount   float64      `json:"shareCount"`
	SaveCount    float64      `json:"saveCount"`
	Reach        float64      `json:"reach"`
	Impressions  float64      `json:"impressions"`
	Location     *RawLocation `json:"location,omitempty"`
	PostedAt     time.Time    `json:"postedAt"`
}

// RawLocation 帖子定位信息
type RawLocation struct {
	Name      string  `json:"name"`
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RawFollower 抓取端返回的粉丝画像
type RawFollower struct {
	Username       string    `json:"username"`
	FullName       string    `json:"fullName"`
	FollowerCount  int64     `json:"followerCount"`
	FollowingCount int64     `json:"followingCount"`
	PostCount      int64     `json:"postCount"`
	EngagementRate float64   `json:"engagementRate"`
	IsPrivate      bool      `json:"isPrivate"`
	CreatedAt      time.Time `json:"createdAt"`
}

// RawInsights 抓取端返回的受众洞察
type RawInsights struct {
	ActivityHours []HourActivity     `json:"activityHours"`
	AgeRanges     map[string]float64 `json:"ageRanges"`
	Genders       map[string]float64 `json:"genders"`
	TopLocations  []LocationShare    `json:"topLocations"`
}

// HourActivity 小时维度的活跃度
type HourActivity struct {
	Hour     int     `json:"hour"`
	Activity float64 `json:"activity"`
}

// LocationShare 地区占比
type LocationShare struct {
	Name  string  `json:"name"`
	Share float64 `json:"share"`
}
