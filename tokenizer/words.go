package tokenizer

// englishStopwords is the common English function-word list, with the
// apostrophe-free spellings that punctuation stripping produces.
var englishStopwords = []string{
	"a", "about", "above", "after", "again", "against", "ain", "all", "am",
	"an", "and", "any", "are", "aren", "arent", "as", "at", "be", "because",
	"been", "before", "being", "below", "between", "both", "but", "by",
	"can", "cant", "couldn", "couldnt", "did", "didn", "didnt", "do", "does",
	"doesn", "doesnt", "doing", "don", "dont", "down", "during", "each",
	"few", "for", "from", "further", "had", "hadn", "hadnt", "has", "hasn",
	"hasnt", "have", "haven", "havent", "having", "he", "her", "here",
	"hers", "herself", "him", "himself", "his", "how", "i", "if", "in",
	"into", "is", "isn", "isnt", "it", "its", "itself", "just", "ll", "ma",
	"me", "mightn", "mightnt", "more", "most", "mustn", "mustnt", "my",
	"myself", "needn", "neednt", "no", "nor", "not", "now", "of", "off",
	"on", "once", "only", "or", "other", "our", "ours", "ourselves", "out",
	"over", "own", "re", "same", "shan", "shant", "she", "shes", "should",
	"shouldn", "shouldnt", "shouldve", "so", "some", "such", "than", "that",
	"thatll", "the", "their", "theirs", "them", "themselves", "then",
	"there", "these", "they", "this", "those", "through", "to", "too",
	"under", "until", "up", "ve", "very", "was", "wasn", "wasnt", "we",
	"were", "weren", "werent", "what", "when", "where", "which", "while",
	"who", "whom", "why", "will", "with", "won", "wont", "wouldn", "wouldnt",
	"you", "youd", "youll", "your", "youre", "yours", "yourself",
	"yourselves", "youve",
}

// promoKeywords mark calls to action, sponsorship, social handles and
// links. Sentences dense in them are dropped, and the words themselves
// never become tokens.
var promoKeywords = []string{
	// calls to action
	"visit", "follow", "learn", "subscribe", "download", "support", "join",
	"get", "unlock", "exclusive", "register", "sign",
	// commercial
	"sponsored", "advertisement", "merch", "discount", "promo", "coupon",
	"sale", "deal", "ad-free", "adfree", "credits", "deposit", "match",
	"episode",
	// contact
	"contact", "inquiries", "dm", "message", "email", "connect", "requests",
	// platforms
	"patreon", "instagram", "tiktok", "snapchat", "facebook", "twitter",
	"youtube", "linkedin", "pinterest", "discord", "reddit", "twitch",
	"spotify",
	// urgency
	"now", "today", "hurry", "fast", "quick", "immediately", "limited",
	"urgent",
	// solicitation
	"donate", "tip", "fund", "crowdfund", "contribute", "sponsor",
	// access
	"access", "preview", "early", "bonus", "premium", "vip",
	// web
	"link", "website", "homepage", "page", "site", "url", "http", "https",
	"www",
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
