package geo

import (
	"strings"

	"github.com/fieldcast/tourplan-backend-go/internal/models"
)

// CityEntry maps a normalized city key to its canonical name and centroid.
type CityEntry struct {
	CanonicalName string
	Point         models.GeoPoint
}

// PostalAnchor is a coarse regional anchor keyed by the first digit of
// a German postal code.
type PostalAnchor struct {
	RegionName string
	Point      models.GeoPoint
}

// GermanyCentroid is the last-resort geocoding fallback.
var GermanyCentroid = models.GeoPoint{Lat: 51.1657, Lng: 10.4515}

// Germany bounding box. Provider results outside it are rejected.
const (
	GermanyMinLat = 47.2
	GermanyMaxLat = 55.1
	GermanyMinLng = 5.8
	GermanyMaxLng = 15.1
)

// InGermany reports whether a point lies inside the German bounding box.
func InGermany(p models.GeoPoint) bool {
	return p.Lat >= GermanyMinLat && p.Lat <= GermanyMaxLat &&
		p.Lng >= GermanyMinLng && p.Lng <= GermanyMaxLng
}

// germanCities covers all German cities above roughly 100k population.
// Keys are lowercased; common spelling variants map to the same entry.
var germanCities = map[string]CityEntry{
	"berlin":             {"Berlin", models.GeoPoint{Lat: 52.5200, Lng: 13.4050}},
	"hamburg":            {"Hamburg", models.GeoPoint{Lat: 53.5511, Lng: 9.9937}},
	"münchen":            {"München", models.GeoPoint{Lat: 48.1351, Lng: 11.5820}},
	"muenchen":           {"München", models.GeoPoint{Lat: 48.1351, Lng: 11.5820}},
	"munich":             {"München", models.GeoPoint{Lat: 48.1351, Lng: 11.5820}},
	"köln":               {"Köln", models.GeoPoint{Lat: 50.9375, Lng: 6.9603}},
	"koeln":              {"Köln", models.GeoPoint{Lat: 50.9375, Lng: 6.9603}},
	"frankfurt":          {"Frankfurt am Main", models.GeoPoint{Lat: 50.1109, Lng: 8.6821}},
	"frankfurt am main":  {"Frankfurt am Main", models.GeoPoint{Lat: 50.1109, Lng: 8.6821}},
	"stuttgart":          {"Stuttgart", models.GeoPoint{Lat: 48.7758, Lng: 9.1829}},
	"düsseldorf":         {"Düsseldorf", models.GeoPoint{Lat: 51.2277, Lng: 6.7735}},
	"duesseldorf":        {"Düsseldorf", models.GeoPoint{Lat: 51.2277, Lng: 6.7735}},
	"leipzig":            {"Leipzig", models.GeoPoint{Lat: 51.3397, Lng: 12.3731}},
	"dortmund":           {"Dortmund", models.GeoPoint{Lat: 51.5136, Lng: 7.4653}},
	"essen":              {"Essen", models.GeoPoint{Lat: 51.4556, Lng: 7.0116}},
	"bremen":             {"Bremen", models.GeoPoint{Lat: 53.0793, Lng: 8.8017}},
	"dresden":            {"Dresden", models.GeoPoint{Lat: 51.0504, Lng: 13.7373}},
	"hannover":           {"Hannover", models.GeoPoint{Lat: 52.3759, Lng: 9.7320}},
	"nürnberg":           {"Nürnberg", models.GeoPoint{Lat: 49.4521, Lng: 11.0767}},
	"nuernberg":          {"Nürnberg", models.GeoPoint{Lat: 49.4521, Lng: 11.0767}},
	"duisburg":           {"Duisburg", models.GeoPoint{Lat: 51.4344, Lng: 6.7623}},
	"bochum":             {"Bochum", models.GeoPoint{Lat: 51.4818, Lng: 7.2162}},
	"wuppertal":          {"Wuppertal", models.GeoPoint{Lat: 51.2562, Lng: 7.1508}},
	"bielefeld":          {"Bielefeld", models.GeoPoint{Lat: 52.0302, Lng: 8.5325}},
	"bonn":               {"Bonn", models.GeoPoint{Lat: 50.7374, Lng: 7.0982}},
	"münster":            {"Münster", models.GeoPoint{Lat: 51.9607, Lng: 7.6261}},
	"muenster":           {"Münster", models.GeoPoint{Lat: 51.9607, Lng: 7.6261}},
	"mannheim":           {"Mannheim", models.GeoPoint{Lat: 49.4875, Lng: 8.4660}},
	"karlsruhe":          {"Karlsruhe", models.GeoPoint{Lat: 49.0069, Lng: 8.4037}},
	"augsburg":           {"Augsburg", models.GeoPoint{Lat: 48.3705, Lng: 10.8978}},
	"wiesbaden":          {"Wiesbaden", models.GeoPoint{Lat: 50.0782, Lng: 8.2398}},
	"mönchengladbach":    {"Mönchengladbach", models.GeoPoint{Lat: 51.1805, Lng: 6.4428}},
	"moenchengladbach":   {"Mönchengladbach", models.GeoPoint{Lat: 51.1805, Lng: 6.4428}},
	"gelsenkirchen":      {"Gelsenkirchen", models.GeoPoint{Lat: 51.5177, Lng: 7.0857}},
	"aachen":             {"Aachen", models.GeoPoint{Lat: 50.7753, Lng: 6.0839}},
	"braunschweig":       {"Braunschweig", models.GeoPoint{Lat: 52.2689, Lng: 10.5268}},
	"chemnitz":           {"Chemnitz", models.GeoPoint{Lat: 50.8278, Lng: 12.9214}},
	"kiel":               {"Kiel", models.GeoPoint{Lat: 54.3233, Lng: 10.1228}},
	"halle":              {"Halle (Saale)", models.GeoPoint{Lat: 51.4970, Lng: 11.9688}},
	"halle (saale)":      {"Halle (Saale)", models.GeoPoint{Lat: 51.4970, Lng: 11.9688}},
	"magdeburg":          {"Magdeburg", models.GeoPoint{Lat: 52.1205, Lng: 11.6276}},
	"freiburg":           {"Freiburg im Breisgau", models.GeoPoint{Lat: 47.9990, Lng: 7.8421}},
	"freiburg im breisgau": {"Freiburg im Breisgau", models.GeoPoint{Lat: 47.9990, Lng: 7.8421}},
	"krefeld":            {"Krefeld", models.GeoPoint{Lat: 51.3388, Lng: 6.5853}},
	"mainz":              {"Mainz", models.GeoPoint{Lat: 49.9929, Lng: 8.2473}},
	"lübeck":             {"Lübeck", models.GeoPoint{Lat: 53.8655, Lng: 10.6866}},
	"luebeck":            {"Lübeck", models.GeoPoint{Lat: 53.8655, Lng: 10.6866}},
	"erfurt":             {"Erfurt", models.GeoPoint{Lat: 50.9848, Lng: 11.0299}},
	"oberhausen":         {"Oberhausen", models.GeoPoint{Lat: 51.4963, Lng: 6.8638}},
	"rostock":            {"Rostock", models.GeoPoint{Lat: 54.0924, Lng: 12.0991}},
	"kassel":             {"Kassel", models.GeoPoint{Lat: 51.3127, Lng: 9.4797}},
	"hagen":              {"Hagen", models.GeoPoint{Lat: 51.3671, Lng: 7.4633}},
	"potsdam":            {"Potsdam", models.GeoPoint{Lat: 52.3906, Lng: 13.0645}},
	"saarbrücken":        {"Saarbrücken", models.GeoPoint{Lat: 49.2402, Lng: 6.9969}},
	"saarbruecken":       {"Saarbrücken", models.GeoPoint{Lat: 49.2402, Lng: 6.9969}},
	"hamm":               {"Hamm", models.GeoPoint{Lat: 51.6739, Lng: 7.8160}},
	"ludwigshafen":       {"Ludwigshafen am Rhein", models.GeoPoint{Lat: 49.4774, Lng: 8.4452}},
	"ludwigshafen am rhein": {"Ludwigshafen am Rhein", models.GeoPoint{Lat: 49.4774, Lng: 8.4452}},
	"mülheim an der ruhr": {"Mülheim an der Ruhr", models.GeoPoint{Lat: 51.4266, Lng: 6.8825}},
	"oldenburg":          {"Oldenburg", models.GeoPoint{Lat: 53.1435, Lng: 8.2146}},
	"osnabrück":          {"Osnabrück", models.GeoPoint{Lat: 52.2799, Lng: 8.0472}},
	"osnabrueck":         {"Osnabrück", models.GeoPoint{Lat: 52.2799, Lng: 8.0472}},
	"leverkusen":         {"Leverkusen", models.GeoPoint{Lat: 51.0459, Lng: 6.9853}},
	"darmstadt":          {"Darmstadt", models.GeoPoint{Lat: 49.8728, Lng: 8.6512}},
	"heidelberg":         {"Heidelberg", models.GeoPoint{Lat: 49.3988, Lng: 8.6724}},
	"solingen":           {"Solingen", models.GeoPoint{Lat: 51.1652, Lng: 7.0671}},
	"regensburg":         {"Regensburg", models.GeoPoint{Lat: 49.0134, Lng: 12.1016}},
	"herne":              {"Herne", models.GeoPoint{Lat: 51.5369, Lng: 7.2009}},
	"paderborn":          {"Paderborn", models.GeoPoint{Lat: 51.7189, Lng: 8.7575}},
	"neuss":              {"Neuss", models.GeoPoint{Lat: 51.1983, Lng: 6.6853}},
	"ingolstadt":         {"Ingolstadt", models.GeoPoint{Lat: 48.7665, Lng: 11.4258}},
	"offenbach":          {"Offenbach am Main", models.GeoPoint{Lat: 50.0956, Lng: 8.7761}},
	"offenbach am main":  {"Offenbach am Main", models.GeoPoint{Lat: 50.0956, Lng: 8.7761}},
	"fürth":              {"Fürth", models.GeoPoint{Lat: 49.4771, Lng: 10.9887}},
	"fuerth":             {"Fürth", models.GeoPoint{Lat: 49.4771, Lng: 10.9887}},
	"würzburg":           {"Würzburg", models.GeoPoint{Lat: 49.7913, Lng: 9.9534}},
	"wuerzburg":          {"Würzburg", models.GeoPoint{Lat: 49.7913, Lng: 9.9534}},
	"ulm":                {"Ulm", models.GeoPoint{Lat: 48.4011, Lng: 9.9876}},
	"heilbronn":          {"Heilbronn", models.GeoPoint{Lat: 49.1427, Lng: 9.2109}},
	"pforzheim":          {"Pforzheim", models.GeoPoint{Lat: 48.8922, Lng: 8.6946}},
	"wolfsburg":          {"Wolfsburg", models.GeoPoint{Lat: 52.4227, Lng: 10.7865}},
	"göttingen":          {"Göttingen", models.GeoPoint{Lat: 51.5413, Lng: 9.9158}},
	"goettingen":         {"Göttingen", models.GeoPoint{Lat: 51.5413, Lng: 9.9158}},
	"bottrop":            {"Bottrop", models.GeoPoint{Lat: 51.5216, Lng: 6.9289}},
	"reutlingen":         {"Reutlingen", models.GeoPoint{Lat: 48.4914, Lng: 9.2043}},
	"koblenz":            {"Koblenz", models.GeoPoint{Lat: 50.3569, Lng: 7.5890}},
	"bremerhaven":        {"Bremerhaven", models.GeoPoint{Lat: 53.5396, Lng: 8.5809}},
	"erlangen":           {"Erlangen", models.GeoPoint{Lat: 49.5897, Lng: 11.0120}},
	"jena":               {"Jena", models.GeoPoint{Lat: 50.9271, Lng: 11.5892}},
	"trier":              {"Trier", models.GeoPoint{Lat: 49.7499, Lng: 6.6371}},
	"salzgitter":         {"Salzgitter", models.GeoPoint{Lat: 52.1548, Lng: 10.3324}},
	"siegen":             {"Siegen", models.GeoPoint{Lat: 50.8748, Lng: 8.0243}},
	"hildesheim":         {"Hildesheim", models.GeoPoint{Lat: 52.1508, Lng: 9.9513}},
	"cottbus":            {"Cottbus", models.GeoPoint{Lat: 51.7563, Lng: 14.3329}},
}

// postalAnchors maps the first digit of a German postal code to a
// coarse regional anchor point.
var postalAnchors = map[byte]PostalAnchor{
	'0': {"Sachsen / Thüringen", models.GeoPoint{Lat: 51.0504, Lng: 13.7373}},
	'1': {"Berlin / Brandenburg", models.GeoPoint{Lat: 52.5200, Lng: 13.4050}},
	'2': {"Hamburg / Norddeutschland", models.GeoPoint{Lat: 53.5511, Lng: 9.9937}},
	'3': {"Hannover / Niedersachsen", models.GeoPoint{Lat: 52.3759, Lng: 9.7320}},
	'4': {"Ruhrgebiet", models.GeoPoint{Lat: 51.5136, Lng: 7.4653}},
	'5': {"Köln / Rheinland", models.GeoPoint{Lat: 50.9375, Lng: 6.9603}},
	'6': {"Frankfurt / Rhein-Main", models.GeoPoint{Lat: 50.1109, Lng: 8.6821}},
	'7': {"Stuttgart / Baden-Württemberg", models.GeoPoint{Lat: 48.7758, Lng: 9.1829}},
	'8': {"München / Oberbayern", models.GeoPoint{Lat: 48.1351, Lng: 11.5820}},
	'9': {"Nürnberg / Franken", models.GeoPoint{Lat: 49.4521, Lng: 11.0767}},
}

// NormalizeCityKey lowercases and trims a city name for table lookup.
// Diacritics are preserved; transliterated variants have their own keys.
func NormalizeCityKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// LookupCity returns the table entry for a normalized city key.
func LookupCity(city string) (CityEntry, bool) {
	e, ok := germanCities[NormalizeCityKey(city)]
	return e, ok
}

// CityKeys returns all normalized city keys, for fuzzy matching.
func CityKeys() []string {
	keys := make([]string, 0, len(germanCities))
	for k := range germanCities {
		keys = append(keys, k)
	}
	return keys
}

// LookupPostalAnchor returns the regional anchor for a five-digit
// postal code based on its first digit.
func LookupPostalAnchor(postalCode string) (PostalAnchor, bool) {
	if len(postalCode) != 5 {
		return PostalAnchor{}, false
	}
	a, ok := postalAnchors[postalCode[0]]
	return a, ok
}
