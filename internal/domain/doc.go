// Package domain turns disease.sh COVID-19 statistics into map features,
// marker badges and dashboard rows.
//
// # Data Source
//
// Statistics come from the public disease.sh API (https://disease.sh/v3/covid-19).
// Two response shapes are consumed:
//
//	GET /countries           JSON array, one object per country
//	GET /all                 JSON object, world totals
//	GET /countries/{name}    JSON object, one country
//	GET /continents/{name}   JSON object, one continent
//
// # Record Conventions
//
// Coordinates live in a nested block and use "long", not "lng":
//
//	{"country":"Italy","countryInfo":{"_id":380,"iso2":"IT","lat":42.8333,"long":12.8333,...},...}
//
// GeoJSON wants [longitude, latitude], so the point is built as [long, lat].
// A record without both numbers is malformed and is dropped by [ParseCountries].
//
// Counts (cases, deaths, recovered, active, critical, tests) are usually
// integers but the API has never promised it, and the *PerOneMillion fields
// are fractional. Every count is decoded as a [Count], which is absent for
// null, missing or non-numeric values. Absent counts render as "-".
//
// "updated" is a Unix timestamp in milliseconds.
//
// # Marker Badge
//
// The badge text on each marker is a truncation of the raw case count, not a
// rounding (see [CaseBadge]):
//
//	cases <= 1,000        "500", "1000"
//	cases  > 1,000        last three digits replaced by "k+": 1500 -> "1k+"
//	cases  > 1,000,000    last five characters of the "k+" form replaced by "m+":
//	                      1234567 -> "1234k+" -> "1m+"
//
// At exactly 1,000,000 only the first rule applies and the badge is "1000k+".
package domain
