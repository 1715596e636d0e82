// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package nlu

// genreDictionary maps spoken genre phrases to canonical genre names.
// Phrases must be lowercase; multi-word phrases are allowed.
var genreDictionary = map[string]string{
	"action":          "Action",
	"adventure":       "Adventure",
	"animation":       "Animation",
	"animated":        "Animation",
	"anime":           "Animation",
	"comedy":          "Comedy",
	"comedies":        "Comedy",
	"crime":           "Crime",
	"documentary":     "Documentary",
	"documentaries":   "Documentary",
	"docs":            "Documentary",
	"drama":           "Drama",
	"dramas":          "Drama",
	"family":          "Family",
	"fantasy":         "Fantasy",
	"horror":          "Horror",
	"musical":         "Musical",
	"musicals":        "Musical",
	"mystery":         "Mystery",
	"mysteries":       "Mystery",
	"romance":         "Romance",
	"rom-com":         "Romance",
	"rom com":         "Romance",
	"romcom":          "Romance",
	"sci-fi":          "Science Fiction",
	"scifi":           "Science Fiction",
	"sci fi":          "Science Fiction",
	"science fiction": "Science Fiction",
	"thriller":        "Thriller",
	"thrillers":       "Thriller",
	"western":         "Western",
	"westerns":        "Western",
	"war":             "War",
	"history":         "History",
	"historical":      "History",
}

// moodDictionary maps mood phrases to canonical mood descriptors.
// Mood descriptors intentionally reuse genre vocabulary where natural
// ("funny" implies a comedy mood) so downstream scoring can overlap
// moods with genre preferences.
var moodDictionary = map[string]string{
	"funny":             "comedy",
	"hilarious":         "comedy",
	"lighthearted":      "comedy",
	"light-hearted":     "comedy",
	"scary":             "scary",
	"spooky":            "scary",
	"creepy":            "scary",
	"terrifying":        "scary",
	"feel-good":         "feel-good",
	"feelgood":          "feel-good",
	"feel good":         "feel-good",
	"uplifting":         "feel-good",
	"heartwarming":      "feel-good",
	"wholesome":         "feel-good",
	"dark":              "dark",
	"gritty":            "dark",
	"bleak":             "dark",
	"exciting":          "exciting",
	"thrilling":         "exciting",
	"action-packed":     "exciting",
	"intense":           "exciting",
	"relaxing":          "relaxing",
	"chill":             "relaxing",
	"cozy":              "relaxing",
	"sad":               "emotional",
	"tearjerker":        "emotional",
	"emotional":         "emotional",
	"moving":            "emotional",
	"romantic":          "romantic",
	"date night":        "romantic",
	"mind-bending":      "cerebral",
	"cerebral":          "cerebral",
	"thought-provoking": "cerebral",
}

// serviceDictionary maps service phrases, including "+" suffixed brand
// shorthands, to canonical service names.
var serviceDictionary = map[string]string{
	"netflix":           "Netflix",
	"hulu":              "Hulu",
	"disney+":           "Disney Plus",
	"disney plus":       "Disney Plus",
	"disney":            "Disney Plus",
	"hbo max":           "Max",
	"hbo":               "Max",
	"amazon prime":      "Prime Video",
	"prime video":       "Prime Video",
	"amazon video":      "Prime Video",
	"apple tv+":         "Apple TV Plus",
	"apple tv plus":     "Apple TV Plus",
	"apple tv":          "Apple TV Plus",
	"paramount+":        "Paramount Plus",
	"paramount plus":    "Paramount Plus",
	"paramount":         "Paramount Plus",
	"peacock":           "Peacock",
	"crunchyroll":       "Crunchyroll",
	"shudder":           "Shudder",
	"mubi":              "MUBI",
	"criterion channel": "Criterion Channel",
	"tubi":              "Tubi",
	"plex":              "Plex",
}

// countryNames maps full country names to ISO 3166-1 alpha-2 codes.
// Matching is longest-name-first so "united kingdom" is not cut short
// by a shorter prefix.
var countryNames = map[string]string{
	"united states":  "US",
	"united kingdom": "GB",
	"south korea":    "KR",
	"new zealand":    "NZ",
	"canada":         "CA",
	"australia":      "AU",
	"germany":        "DE",
	"france":         "FR",
	"japan":          "JP",
	"india":          "IN",
	"brazil":         "BR",
	"mexico":         "MX",
	"spain":          "ES",
	"italy":          "IT",
	"netherlands":    "NL",
	"ireland":        "IE",
	"sweden":         "SE",
	"norway":         "NO",
	"denmark":        "DK",
}

// countryAliases maps informal country references to ISO codes.
var countryAliases = map[string]string{
	"usa":           "US",
	"america":       "US",
	"the states":    "US",
	"uk":            "GB",
	"britain":       "GB",
	"great britain": "GB",
	"england":       "GB",
	"aussie":        "AU",
	"holland":       "NL",
}

// isoCodes is the set of ISO codes recognized as bare uppercase tokens.
// Lowercase two-letter tokens are too ambiguous ("us", "in", "it") to
// resolve as regions.
var isoCodes = map[string]string{
	"US": "US", "GB": "GB", "UK": "GB", "CA": "CA", "AU": "AU",
	"DE": "DE", "FR": "FR", "JP": "JP", "IN": "IN", "BR": "BR",
	"MX": "MX", "ES": "ES", "IT": "IT", "NL": "NL", "KR": "KR",
	"NZ": "NZ", "IE": "IE", "SE": "SE", "NO": "NO", "DK": "DK",
}
