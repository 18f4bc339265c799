// internal/scraper/fields.go
package scraper

// FieldSpec maps a meta tag identifier onto a record field.
// Property matching is case-insensitive. When Multiple is set every match is
// appended to an ordered list; otherwise the last match in document order wins.
type FieldSpec struct {
	Property  string `yaml:"property" json:"property"`
	FieldName string `yaml:"field_name" json:"fieldName"`
	Multiple  bool   `yaml:"multiple" json:"multiple"`
}

// MetaTag is a caller supplied field spec, appended after the built-in table.
type MetaTag = FieldSpec

// Field names the engine reads or writes directly.
const (
	FieldOGTitle          = "ogTitle"
	FieldOGType           = "ogType"
	FieldOGURL            = "ogUrl"
	FieldOGDescription    = "ogDescription"
	FieldOGSiteName       = "ogSiteName"
	FieldOGLocale         = "ogLocale"
	FieldOGLogo           = "ogLogo"
	FieldOGDate           = "ogDate"
	FieldOGImage          = "ogImage"
	FieldOGImageURL       = "ogImageURL"
	FieldOGImageSecureURL = "ogImageSecureURL"
	FieldOGImageWidth     = "ogImageWidth"
	FieldOGImageHeight    = "ogImageHeight"
	FieldOGImageType      = "ogImageType"
	FieldOGVideo          = "ogVideo"
	FieldOGVideoURL       = "ogVideoURL"
	FieldOGVideoSecureURL = "ogVideoSecureURL"
	FieldOGVideoWidth     = "ogVideoWidth"
	FieldOGVideoHeight    = "ogVideoHeight"
	FieldOGVideoType      = "ogVideoType"
	FieldOGAudioURL       = "ogAudioURL"
	FieldOGAudioSecureURL = "ogAudioSecureURL"
	FieldOGAudioType      = "ogAudioType"

	FieldTwitterCard         = "twitterCard"
	FieldTwitterTitle        = "twitterTitle"
	FieldTwitterDescription  = "twitterDescription"
	FieldTwitterImage        = "twitterImage"
	FieldTwitterImageSrc     = "twitterImageSrc"
	FieldTwitterImageWidth   = "twitterImageWidth"
	FieldTwitterImageHeight  = "twitterImageHeight"
	FieldTwitterImageAlt     = "twitterImageAlt"
	FieldTwitterPlayer       = "twitterPlayer"
	FieldTwitterPlayerWidth  = "twitterPlayerWidth"
	FieldTwitterPlayerHeight = "twitterPlayerHeight"
	FieldTwitterPlayerStream = "twitterPlayerStream"

	FieldMusicSong      = "musicSong"
	FieldMusicSongTrack = "musicSongTrack"
	FieldMusicSongDisc  = "musicSongDisc"

	FieldArticlePublishedTime = "articlePublishedTime"
	FieldFavicon              = "favicon"
)

// defaultFields is the built-in table. Order matters only for documentation;
// every spec is checked against every meta node.
var defaultFields = []FieldSpec{
	// Open Graph basics
	{Property: "og:title", FieldName: FieldOGTitle},
	{Property: "og:type", FieldName: FieldOGType},
	{Property: "og:url", FieldName: FieldOGURL},
	{Property: "og:description", FieldName: FieldOGDescription},
	{Property: "og:determiner", FieldName: "ogDeterminer"},
	{Property: "og:locale", FieldName: FieldOGLocale},
	{Property: "og:locale:alternate", FieldName: "ogLocaleAlternate", Multiple: true},
	{Property: "og:site_name", FieldName: FieldOGSiteName},
	{Property: "og:logo", FieldName: FieldOGLogo},
	{Property: "og:date", FieldName: FieldOGDate},
	{Property: "og:updated_time", FieldName: "ogUpdatedTime"},
	{Property: "og:rich_attachment", FieldName: "ogRichAttachment"},
	{Property: "og:see_also", FieldName: "ogSeeAlso", Multiple: true},
	{Property: "og:ttl", FieldName: "ogTtl"},
	{Property: "fb:app_id", FieldName: "fbAppId"},

	// og:image family
	{Property: "og:image", FieldName: FieldOGImage, Multiple: true},
	{Property: "og:image:url", FieldName: FieldOGImageURL, Multiple: true},
	{Property: "og:image:secure_url", FieldName: FieldOGImageSecureURL, Multiple: true},
	{Property: "og:image:width", FieldName: FieldOGImageWidth, Multiple: true},
	{Property: "og:image:height", FieldName: FieldOGImageHeight, Multiple: true},
	{Property: "og:image:type", FieldName: FieldOGImageType, Multiple: true},
	{Property: "og:image:alt", FieldName: "ogImageAlt", Multiple: true},

	// og:video family
	{Property: "og:video", FieldName: FieldOGVideo, Multiple: true},
	{Property: "og:video:url", FieldName: FieldOGVideoURL, Multiple: true},
	{Property: "og:video:secure_url", FieldName: FieldOGVideoSecureURL, Multiple: true},
	{Property: "og:video:width", FieldName: FieldOGVideoWidth, Multiple: true},
	{Property: "og:video:height", FieldName: FieldOGVideoHeight, Multiple: true},
	{Property: "og:video:type", FieldName: FieldOGVideoType, Multiple: true},

	// og:audio
	{Property: "og:audio", FieldName: "ogAudio"},
	{Property: "og:audio:url", FieldName: FieldOGAudioURL},
	{Property: "og:audio:secure_url", FieldName: FieldOGAudioSecureURL},
	{Property: "og:audio:type", FieldName: FieldOGAudioType},

	// og:product and commerce
	{Property: "og:price:amount", FieldName: "ogPriceAmount"},
	{Property: "og:price:currency", FieldName: "ogPriceCurrency"},
	{Property: "og:availability", FieldName: "ogAvailability"},
	{Property: "og:product:retailer_item_id", FieldName: "ogProductRetailerItemId"},
	{Property: "og:product:price:amount", FieldName: "ogProductPriceAmount"},
	{Property: "og:product:price:currency", FieldName: "ogProductPriceCurrency"},
	{Property: "og:product:availability", FieldName: "ogProductAvailability"},
	{Property: "og:product:condition", FieldName: "ogProductCondition"},
	{Property: "product:price:amount", FieldName: "productPriceAmount"},
	{Property: "product:price:currency", FieldName: "productPriceCurrency"},
	{Property: "product:availability", FieldName: "productAvailability"},
	{Property: "product:condition", FieldName: "productCondition"},
	{Property: "product:retailer_item_id", FieldName: "productRetailerItemId"},

	// article
	{Property: "article:published_time", FieldName: FieldArticlePublishedTime},
	{Property: "article:modified_time", FieldName: "articleModifiedTime"},
	{Property: "article:expiration_time", FieldName: "articleExpirationTime"},
	{Property: "article:author", FieldName: "articleAuthor", Multiple: true},
	{Property: "article:section", FieldName: "articleSection"},
	{Property: "article:tag", FieldName: "articleTag", Multiple: true},
	{Property: "article:publisher", FieldName: "articlePublisher"},

	// book
	{Property: "book:author", FieldName: "bookAuthor", Multiple: true},
	{Property: "book:isbn", FieldName: "bookIsbn"},
	{Property: "book:release_date", FieldName: "bookReleaseDate"},
	{Property: "book:tag", FieldName: "bookTag", Multiple: true},

	// profile
	{Property: "profile:first_name", FieldName: "profileFirstName"},
	{Property: "profile:last_name", FieldName: "profileLastName"},
	{Property: "profile:username", FieldName: "profileUsername"},
	{Property: "profile:gender", FieldName: "profileGender"},

	// music
	{Property: "music:song", FieldName: FieldMusicSong, Multiple: true},
	{Property: "music:song:url", FieldName: "musicSongUrl", Multiple: true},
	{Property: "music:song:track", FieldName: FieldMusicSongTrack, Multiple: true},
	{Property: "music:song:disc", FieldName: FieldMusicSongDisc, Multiple: true},
	{Property: "music:album", FieldName: "musicAlbum", Multiple: true},
	{Property: "music:album:url", FieldName: "musicAlbumUrl"},
	{Property: "music:album:track", FieldName: "musicAlbumTrack"},
	{Property: "music:album:disc", FieldName: "musicAlbumDisc"},
	{Property: "music:musician", FieldName: "musicMusician", Multiple: true},
	{Property: "music:creator", FieldName: "musicCreator"},
	{Property: "music:release_date", FieldName: "musicReleaseDate"},
	{Property: "music:duration", FieldName: "musicDuration"},
	{Property: "music:playlist", FieldName: "musicPlaylist"},
	{Property: "music:radio_station", FieldName: "musicRadioStation"},

	// video metadata
	{Property: "video:actor", FieldName: "videoActor", Multiple: true},
	{Property: "video:actor:role", FieldName: "videoActorRole", Multiple: true},
	{Property: "video:director", FieldName: "videoDirector", Multiple: true},
	{Property: "video:writer", FieldName: "videoWriter", Multiple: true},
	{Property: "video:duration", FieldName: "videoDuration"},
	{Property: "video:release_date", FieldName: "videoReleaseDate"},
	{Property: "video:tag", FieldName: "videoTag", Multiple: true},
	{Property: "video:series", FieldName: "videoSeries"},

	// place and restaurant
	{Property: "place:location:latitude", FieldName: "placeLocationLatitude"},
	{Property: "place:location:longitude", FieldName: "placeLocationLongitude"},
	{Property: "restaurant:menu", FieldName: "restaurantMenu"},
	{Property: "restaurant:restaurant", FieldName: "restaurantRestaurant"},
	{Property: "restaurant:section", FieldName: "restaurantSection"},
	{Property: "restaurant:variation:price:amount", FieldName: "restaurantVariationPriceAmount"},
	{Property: "restaurant:variation:price:currency", FieldName: "restaurantVariationPriceCurrency"},
	{Property: "restaurant:contact_info:website", FieldName: "restaurantContactInfoWebsite"},

	// Twitter Card
	{Property: "twitter:card", FieldName: FieldTwitterCard},
	{Property: "twitter:url", FieldName: "twitterUrl"},
	{Property: "twitter:site", FieldName: "twitterSite"},
	{Property: "twitter:site:id", FieldName: "twitterSiteId"},
	{Property: "twitter:creator", FieldName: "twitterCreator"},
	{Property: "twitter:creator:id", FieldName: "twitterCreatorId"},
	{Property: "twitter:title", FieldName: FieldTwitterTitle},
	{Property: "twitter:description", FieldName: FieldTwitterDescription},
	{Property: "twitter:image", FieldName: FieldTwitterImage, Multiple: true},
	{Property: "twitter:image:src", FieldName: FieldTwitterImageSrc, Multiple: true},
	{Property: "twitter:image:width", FieldName: FieldTwitterImageWidth, Multiple: true},
	{Property: "twitter:image:height", FieldName: FieldTwitterImageHeight, Multiple: true},
	{Property: "twitter:image:alt", FieldName: FieldTwitterImageAlt, Multiple: true},
	{Property: "twitter:player", FieldName: FieldTwitterPlayer, Multiple: true},
	{Property: "twitter:player:width", FieldName: FieldTwitterPlayerWidth, Multiple: true},
	{Property: "twitter:player:height", FieldName: FieldTwitterPlayerHeight, Multiple: true},
	{Property: "twitter:player:stream", FieldName: FieldTwitterPlayerStream, Multiple: true},
	{Property: "twitter:player:stream:content_type", FieldName: "twitterPlayerStreamContentType"},
	{Property: "twitter:app:name:iphone", FieldName: "twitterAppNameiPhone"},
	{Property: "twitter:app:id:iphone", FieldName: "twitterAppIdiPhone"},
	{Property: "twitter:app:url:iphone", FieldName: "twitterAppUrliPhone"},
	{Property: "twitter:app:name:ipad", FieldName: "twitterAppNameiPad"},
	{Property: "twitter:app:id:ipad", FieldName: "twitterAppIdiPad"},
	{Property: "twitter:app:url:ipad", FieldName: "twitterAppUrliPad"},
	{Property: "twitter:app:name:googleplay", FieldName: "twitterAppNameGooglePlay"},
	{Property: "twitter:app:id:googleplay", FieldName: "twitterAppIdGooglePlay"},
	{Property: "twitter:app:url:googleplay", FieldName: "twitterAppUrlGooglePlay"},

	// App Links
	{Property: "al:android:app_name", FieldName: "alAndroidAppName"},
	{Property: "al:android:class", FieldName: "alAndroidClass"},
	{Property: "al:android:package", FieldName: "alAndroidPackage"},
	{Property: "al:android:url", FieldName: "alAndroidUrl"},
	{Property: "al:ios:app_name", FieldName: "alIosAppName"},
	{Property: "al:ios:app_store_id", FieldName: "alIosAppStoreId"},
	{Property: "al:ios:url", FieldName: "alIosUrl"},
	{Property: "al:ipad:app_name", FieldName: "alIpadAppName"},
	{Property: "al:ipad:app_store_id", FieldName: "alIpadAppStoreId"},
	{Property: "al:ipad:url", FieldName: "alIpadUrl"},
	{Property: "al:iphone:app_name", FieldName: "alIphoneAppName"},
	{Property: "al:iphone:app_store_id", FieldName: "alIphoneAppStoreId"},
	{Property: "al:iphone:url", FieldName: "alIphoneUrl"},
	{Property: "al:windows:app_id", FieldName: "alWindowsAppId"},
	{Property: "al:windows:app_name", FieldName: "alWindowsAppName"},
	{Property: "al:windows:url", FieldName: "alWindowsUrl"},
	{Property: "al:windows_phone:app_id", FieldName: "alWindowsPhoneAppId"},
	{Property: "al:windows_phone:app_name", FieldName: "alWindowsPhoneAppName"},
	{Property: "al:windows_phone:url", FieldName: "alWindowsPhoneUrl"},
	{Property: "al:windows_universal:app_id", FieldName: "alWindowsUniversalAppId"},
	{Property: "al:windows_universal:app_name", FieldName: "alWindowsUniversalAppName"},
	{Property: "al:windows_universal:url", FieldName: "alWindowsUniversalUrl"},
	{Property: "al:web:url", FieldName: "alWebUrl"},
	{Property: "al:web:should_fallback", FieldName: "alWebShouldFallback"},

	// Dublin Core
	{Property: "dc.title", FieldName: "dcTitle"},
	{Property: "dc.creator", FieldName: "dcCreator"},
	{Property: "dc.subject", FieldName: "dcSubject"},
	{Property: "dc.description", FieldName: "dcDescription"},
	{Property: "dc.publisher", FieldName: "dcPublisher"},
	{Property: "dc.contributor", FieldName: "dcContributor"},
	{Property: "dc.date", FieldName: "dcDate"},
	{Property: "dc.type", FieldName: "dcType"},
	{Property: "dc.format", FieldName: "dcFormat"},
	{Property: "dc.identifier", FieldName: "dcIdentifier"},
	{Property: "dc.source", FieldName: "dcSource"},
	{Property: "dc.language", FieldName: "dcLanguage"},
	{Property: "dc.relation", FieldName: "dcRelation"},
	{Property: "dc.coverage", FieldName: "dcCoverage"},
	{Property: "dc.rights", FieldName: "dcRights"},

	// plain document meta
	{Property: "author", FieldName: "author"},
	{Property: "keywords", FieldName: "keywords"},
	{Property: "robots", FieldName: "robots"},
	{Property: "generator", FieldName: "generator"},
	{Property: "application-name", FieldName: "applicationName"},
	{Property: "theme-color", FieldName: "themeColor"},
	{Property: "viewport", FieldName: "viewport"},
	{Property: "copyright", FieldName: "copyright"},
	{Property: "apple-itunes-app", FieldName: "appleItunesApp"},
	{Property: "msapplication-tilecolor", FieldName: "msApplicationTileColor"},
}

// DefaultFields returns a copy of the built-in field table.
func DefaultFields() []FieldSpec {
	out := make([]FieldSpec, len(defaultFields))
	copy(out, defaultFields)
	return out
}

// BuildFieldTable appends custom specs to the built-in table.
func BuildFieldTable(custom []MetaTag) []FieldSpec {
	table := make([]FieldSpec, 0, len(defaultFields)+len(custom))
	table = append(table, defaultFields...)
	return append(table, custom...)
}
