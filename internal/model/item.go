package model

// ItemType 可互动内容类型（多态引用的 tag 部分）
type ItemType string

const (
	ItemTypeListing   ItemType = "listing"
	ItemTypeGarage    ItemType = "garage"
	ItemTypeEvent     ItemType = "event"
	ItemTypeMeetup    ItemType = "meetup"
	ItemTypeRepairBid ItemType = "repair_bid"
	ItemTypePost      ItemType = "post"
)

var validItemTypes = map[ItemType]struct{}{
	ItemTypeListing:   {},
	ItemTypeGarage:    {},
	ItemTypeEvent:     {},
	ItemTypeMeetup:    {},
	ItemTypeRepairBid: {},
	ItemTypePost:      {},
}

func (t ItemType) Valid() bool {
	_, ok := validItemTypes[t]
	return ok
}

// ShareChannel 分享渠道
type ShareChannel string

const (
	ShareLink     ShareChannel = "link"
	ShareWhatsApp ShareChannel = "whatsapp"
	ShareTwitter  ShareChannel = "twitter"
	ShareFacebook ShareChannel = "facebook"
	ShareEmail    ShareChannel = "email"
	ShareOther    ShareChannel = "other"
)

var validShareChannels = map[ShareChannel]struct{}{
	ShareLink: {}, ShareWhatsApp: {}, ShareTwitter: {},
	ShareFacebook: {}, ShareEmail: {}, ShareOther: {},
}

func (ch ShareChannel) Valid() bool {
	_, ok := validShareChannels[ch]
	return ok
}
