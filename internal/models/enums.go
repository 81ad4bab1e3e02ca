// internal/models/enums.go
package models

import (
	"encoding/json"
	"strings"
)

// Sport is the subject category tag.
type Sport string

const (
	SportFootball         Sport = "FOOTBALL"
	SportBasketball       Sport = "BASKETBALL"
	SportMensBasketball   Sport = "MENS_BASKETBALL"
	SportWomensBasketball Sport = "WOMENS_BASKETBALL"
	SportBaseball         Sport = "BASEBALL"
	SportSoftball         Sport = "SOFTBALL"
	SportSoccer           Sport = "SOCCER"
	SportMensSoccer       Sport = "MENS_SOCCER"
	SportWomensSoccer     Sport = "WOMENS_SOCCER"
	SportVolleyball       Sport = "VOLLEYBALL"
	SportTrackAndField    Sport = "TRACK_AND_FIELD"
	SportCrossCountry     Sport = "CROSS_COUNTRY"
	SportSwimming         Sport = "SWIMMING"
	SportDiving           Sport = "DIVING"
	SportWaterPolo        Sport = "WATER_POLO"
	SportTennis           Sport = "TENNIS"
	SportGolf             Sport = "GOLF"
	SportWrestling        Sport = "WRESTLING"
	SportGymnastics       Sport = "GYMNASTICS"
	SportLacrosse         Sport = "LACROSSE"
	SportHockey           Sport = "HOCKEY"
	SportFieldHockey      Sport = "FIELD_HOCKEY"
	SportIceHockey        Sport = "ICE_HOCKEY"
	SportRowing           Sport = "ROWING"
	SportCheerleading     Sport = "CHEERLEADING"
	SportDance            Sport = "DANCE"
	SportEsports          Sport = "ESPORTS"
	SportOther            Sport = "OTHER"
)

var knownSports = setOf(
	SportFootball, SportBasketball, SportMensBasketball, SportWomensBasketball,
	SportBaseball, SportSoftball, SportSoccer, SportMensSoccer, SportWomensSoccer,
	SportVolleyball, SportTrackAndField, SportCrossCountry, SportSwimming, SportDiving,
	SportWaterPolo, SportTennis, SportGolf, SportWrestling, SportGymnastics, SportLacrosse,
	SportHockey, SportFieldHockey, SportIceHockey, SportRowing, SportCheerleading,
	SportDance, SportEsports, SportOther,
)

// Conference is the subject sub-group.
type Conference string

const (
	ConferenceSEC           Conference = "SEC"
	ConferenceBigTen        Conference = "BIG_TEN"
	ConferenceBig12         Conference = "BIG_12"
	ConferenceACC           Conference = "ACC"
	ConferencePac12         Conference = "PAC_12"
	ConferenceAAC           Conference = "AAC"
	ConferenceMountainWest  Conference = "MOUNTAIN_WEST"
	ConferenceMAC           Conference = "MAC"
	ConferenceSunBelt       Conference = "SUN_BELT"
	ConferenceConferenceUSA Conference = "CONFERENCE_USA"
	ConferenceIvyLeague     Conference = "IVY_LEAGUE"
	ConferenceIndependent   Conference = "INDEPENDENT"
	ConferenceNAIA          Conference = "NAIA"
	ConferenceJUCO          Conference = "JUCO"
	ConferenceD2            Conference = "D2"
	ConferenceD3            Conference = "D3"
	ConferenceOther         Conference = "OTHER"
)

var knownConferences = setOf(
	ConferenceSEC, ConferenceBigTen, ConferenceBig12, ConferenceACC, ConferencePac12,
	ConferenceAAC, ConferenceMountainWest, ConferenceMAC, ConferenceSunBelt,
	ConferenceConferenceUSA, ConferenceIvyLeague, ConferenceIndependent, ConferenceNAIA,
	ConferenceJUCO, ConferenceD2, ConferenceD3, ConferenceOther,
)

type SocialPlatform string

const (
	PlatformInstagram SocialPlatform = "INSTAGRAM"
	PlatformTikTok    SocialPlatform = "TIKTOK"
	PlatformYouTube   SocialPlatform = "YOUTUBE"
	PlatformTwitter   SocialPlatform = "TWITTER"
	PlatformTwitch    SocialPlatform = "TWITCH"
	PlatformFacebook  SocialPlatform = "FACEBOOK"
	PlatformLinkedIn  SocialPlatform = "LINKEDIN"
	PlatformSnapchat  SocialPlatform = "SNAPCHAT"
	PlatformThreads   SocialPlatform = "THREADS"
	PlatformOther     SocialPlatform = "OTHER"
)

var knownPlatforms = setOf(
	PlatformInstagram, PlatformTikTok, PlatformYouTube, PlatformTwitter, PlatformTwitch,
	PlatformFacebook, PlatformLinkedIn, PlatformSnapchat, PlatformThreads, PlatformOther,
)

// BrandCategory is the brand category tag.
type BrandCategory string

const (
	CategoryAthleticApparel   BrandCategory = "ATHLETIC_APPAREL"
	CategoryFootwear          BrandCategory = "FOOTWEAR"
	CategoryCasualFashion     BrandCategory = "CASUAL_FASHION"
	CategoryLuxuryFashion     BrandCategory = "LUXURY_FASHION"
	CategoryStreetwear        BrandCategory = "STREETWEAR"
	CategorySportsNutrition   BrandCategory = "SPORTS_NUTRITION"
	CategoryEnergyDrinks      BrandCategory = "ENERGY_DRINKS"
	CategoryFastFood          BrandCategory = "FAST_FOOD"
	CategoryHealthyFood       BrandCategory = "HEALTHY_FOOD"
	CategoryRestaurants       BrandCategory = "RESTAURANTS"
	CategoryAlcohol           BrandCategory = "ALCOHOL"
	CategoryElectronics       BrandCategory = "ELECTRONICS"
	CategoryGaming            BrandCategory = "GAMING"
	CategorySoftwareApps      BrandCategory = "SOFTWARE_APPS"
	CategoryWearables         BrandCategory = "WEARABLES"
	CategoryFitnessEquipment  BrandCategory = "FITNESS_EQUIPMENT"
	CategorySupplements       BrandCategory = "SUPPLEMENTS"
	CategoryWellnessServices  BrandCategory = "WELLNESS_SERVICES"
	CategoryHealthcare        BrandCategory = "HEALTHCARE"
	CategoryBanking           BrandCategory = "BANKING"
	CategoryCrypto            BrandCategory = "CRYPTO"
	CategoryInsurance         BrandCategory = "INSURANCE"
	CategoryInvesting         BrandCategory = "INVESTING"
	CategoryCars              BrandCategory = "CARS"
	CategoryMotorcycles       BrandCategory = "MOTORCYCLES"
	CategoryAutoAccessories   BrandCategory = "AUTO_ACCESSORIES"
	CategoryStreamingServices BrandCategory = "STREAMING_SERVICES"
	CategoryMusic             BrandCategory = "MUSIC"
	CategoryMoviesTV          BrandCategory = "MOVIES_TV"
	CategoryVideoGames        BrandCategory = "VIDEO_GAMES"
	CategorySkincare          BrandCategory = "SKINCARE"
	CategoryHaircare          BrandCategory = "HAIRCARE"
	CategoryGrooming          BrandCategory = "GROOMING"
	CategorySportsEquipment   BrandCategory = "SPORTS_EQUIPMENT"
	CategorySportsBetting     BrandCategory = "SPORTS_BETTING"
	CategorySportsMemorabilia BrandCategory = "SPORTS_MEMORABILIA"
	CategoryLocalBusiness     BrandCategory = "LOCAL_BUSINESS"
	CategoryNonprofit         BrandCategory = "NONPROFIT"
	CategoryOther             BrandCategory = "OTHER"
)

var knownCategories = setOf(
	CategoryAthleticApparel, CategoryFootwear, CategoryCasualFashion, CategoryLuxuryFashion,
	CategoryStreetwear, CategorySportsNutrition, CategoryEnergyDrinks, CategoryFastFood,
	CategoryHealthyFood, CategoryRestaurants, CategoryAlcohol, CategoryElectronics,
	CategoryGaming, CategorySoftwareApps, CategoryWearables, CategoryFitnessEquipment,
	CategorySupplements, CategoryWellnessServices, CategoryHealthcare, CategoryBanking,
	CategoryCrypto, CategoryInsurance, CategoryInvesting, CategoryCars, CategoryMotorcycles,
	CategoryAutoAccessories, CategoryStreamingServices, CategoryMusic, CategoryMoviesTV,
	CategoryVideoGames, CategorySkincare, CategoryHaircare, CategoryGrooming,
	CategorySportsEquipment, CategorySportsBetting, CategorySportsMemorabilia,
	CategoryLocalBusiness, CategoryNonprofit, CategoryOther,
)

type ContentType string

const (
	ContentReels               ContentType = "REELS"
	ContentTikTokVideos        ContentType = "TIKTOK_VIDEOS"
	ContentYouTubeVideos       ContentType = "YOUTUBE_VIDEOS"
	ContentLiveStreams         ContentType = "LIVE_STREAMS"
	ContentPhotoPosts          ContentType = "PHOTO_POSTS"
	ContentStories             ContentType = "STORIES"
	ContentCarouselPosts       ContentType = "CAROUSEL_POSTS"
	ContentQAndA               ContentType = "Q_AND_A"
	ContentPolls               ContentType = "POLLS"
	ContentChallenges          ContentType = "CHALLENGES"
	ContentInPersonAppearances ContentType = "IN_PERSON_APPEARANCES"
	ContentAutographSignings   ContentType = "AUTOGRAPH_SIGNINGS"
	ContentSpeakingEngagements ContentType = "SPEAKING_ENGAGEMENTS"
	ContentProductReviews      ContentType = "PRODUCT_REVIEWS"
	ContentUnboxing            ContentType = "UNBOXING"
	ContentTutorials           ContentType = "TUTORIALS"
	ContentPodcastAppearances  ContentType = "PODCAST_APPEARANCES"
	ContentInterviews          ContentType = "INTERVIEWS"
	ContentBrandAmbassador     ContentType = "BRAND_AMBASSADOR"
	ContentOther               ContentType = "OTHER"
)

var knownContentTypes = setOf(
	ContentReels, ContentTikTokVideos, ContentYouTubeVideos, ContentLiveStreams,
	ContentPhotoPosts, ContentStories, ContentCarouselPosts, ContentQAndA, ContentPolls,
	ContentChallenges, ContentInPersonAppearances, ContentAutographSignings,
	ContentSpeakingEngagements, ContentProductReviews, ContentUnboxing, ContentTutorials,
	ContentPodcastAppearances, ContentInterviews, ContentBrandAmbassador, ContentOther,
)

// ==========================
// Parsing
// ==========================

// ParseSport maps a raw label onto a Sport; unrecognized labels become SportOther.
func ParseSport(raw string) Sport { return parseLabel(raw, knownSports, SportOther) }

func ParseConference(raw string) Conference {
	return parseLabel(raw, knownConferences, ConferenceOther)
}

func ParsePlatform(raw string) SocialPlatform {
	return parseLabel(raw, knownPlatforms, PlatformOther)
}

func ParseCategory(raw string) BrandCategory {
	return parseLabel(raw, knownCategories, CategoryOther)
}

func ParseContentType(raw string) ContentType {
	return parseLabel(raw, knownContentTypes, ContentOther)
}

// LookupCategory reports whether raw names a known category.
func LookupCategory(raw string) (BrandCategory, bool) {
	c := BrandCategory(normalizeLabel(raw))
	_, ok := knownCategories[c]
	return c, ok
}

func LookupContentType(raw string) (ContentType, bool) {
	c := ContentType(normalizeLabel(raw))
	_, ok := knownContentTypes[c]
	return c, ok
}

func LookupSport(raw string) (Sport, bool) {
	s := Sport(normalizeLabel(raw))
	_, ok := knownSports[s]
	return s, ok
}

func LookupConference(raw string) (Conference, bool) {
	c := Conference(normalizeLabel(raw))
	_, ok := knownConferences[c]
	return c, ok
}

func (s *Sport) UnmarshalJSON(b []byte) error {
	return unmarshalLabel(b, func(v string) { *s = ParseSport(v) })
}

func (c *Conference) UnmarshalJSON(b []byte) error {
	return unmarshalLabel(b, func(v string) {
		if v == "" {
			*c = ""
			return
		}
		*c = ParseConference(v)
	})
}

func (p *SocialPlatform) UnmarshalJSON(b []byte) error {
	return unmarshalLabel(b, func(v string) { *p = ParsePlatform(v) })
}

func (c *BrandCategory) UnmarshalJSON(b []byte) error {
	return unmarshalLabel(b, func(v string) {
		if v == "" {
			*c = ""
			return
		}
		*c = ParseCategory(v)
	})
}

func (c *ContentType) UnmarshalJSON(b []byte) error {
	return unmarshalLabel(b, func(v string) { *c = ParseContentType(v) })
}

func unmarshalLabel(b []byte, set func(string)) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	set(raw)
	return nil
}

func parseLabel[T ~string](raw string, known map[T]struct{}, fallback T) T {
	v := T(normalizeLabel(raw))
	if _, ok := known[v]; ok {
		return v
	}
	return fallback
}

func normalizeLabel(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

func setOf[T comparable](values ...T) map[T]struct{} {
	out := make(map[T]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}
