package query

// popularityScript ranks by vote_average * ln(vote_count). Documents without a
// positive vote_count get the lowest possible score instead of NaN or -Infinity.
const popularityScript = "if (doc['vote_count'].size() == 0 || doc['vote_average'].size() == 0 || doc['vote_count'].value <= 0) " +
	"{ return -Double.MAX_VALUE; } " +
	"return doc['vote_average'].value * Math.log(doc['vote_count'].value);"

// PopularitySort orders by descending popularity score.
func PopularitySort() Sort {
	return Sort{
		Order:  Desc,
		Script: &Script{Source: popularityScript, Type: "number"},
	}
}
