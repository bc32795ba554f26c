package extract

// Recognized cities, multi-word names first so "Navi Mumbai" is not split
// into locality "navi" + city "mumbai". Matching is case-insensitive; the
// canonical form is what gets written into the requirements.
var cityGazetteer = []string{
	"Navi Mumbai",
	"New Delhi",
	"Mumbai",
	"Delhi",
	"Pune",
	"Bangalore",
	"Bengaluru",
	"Hyderabad",
	"Chennai",
	"Kolkata",
	"Ahmedabad",
	"Gurgaon",
	"Gurugram",
	"Noida",
	"Jaipur",
	"Lucknow",
	"Thane",
	"Indore",
	"Nagpur",
	"Chandigarh",
	"Kochi",
	"Surat",
}

