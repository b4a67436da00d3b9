package sentiment

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// Alias tokens emitted by the tokenizer in place of raw surface forms.
// Keeping them in the vocabulary as single pseudo-words lets the
// vectorizer treat "https://t.co/x" and "http://bit.ly/y" as the same
// feature.
const (
	AliasURL     = "<url>"
	AliasUser    = "<user>"
	AliasHashtag = "<hashtag>"
	AliasNumber  = "<number>"
	AliasSmile   = "<smile>"
	AliasSad     = "<sadface>"
	AliasLol     = "<lolface>"
	AliasNeutral = "<neutralface>"
	AliasHeart   = "<heart>"
)

// emoticonAliases maps ASCII emoticons to their alias tokens. Lookup
// happens before lowercasing, so case-sensitive variants are listed
// explicitly.
var emoticonAliases = map[string]string{
	":)":   AliasSmile,
	":))":  AliasSmile,
	":)))": AliasSmile,
	":-)":  AliasSmile,
	":-))": AliasSmile,
	":]":   AliasSmile,
	":-]":  AliasSmile,
	":o)":  AliasSmile,
	":}":   AliasSmile,
	":-}":  AliasSmile,
	":D":   AliasSmile,
	":-D":  AliasSmile,
	"=)":   AliasSmile,
	"=D":   AliasSmile,
	"8-)":  AliasSmile,
	"8D":   AliasSmile,
	"(:":   AliasSmile,
	"(=":   AliasSmile,
	"(o:":  AliasSmile,
	"[-:":  AliasSmile,
	"^_^":  AliasSmile,
	"^__^": AliasSmile,

	":(":    AliasSad,
	":((":   AliasSad,
	":(((":  AliasSad,
	":-(":   AliasSad,
	":[":    AliasSad,
	":-[":   AliasSad,
	"=(":    AliasSad,
	")-:":   AliasSad,
	"):":    AliasSad,
	":`(":   AliasSad,
	":`-(":  AliasSad,
	":'(":   AliasSad,
	":'-(":  AliasSad,
	"D:":    AliasSad,
	"v_v":   AliasSad,
	"V_V":   AliasSad,
	"(-_-)": AliasSad,

	"xD":  AliasLol,
	"XD":  AliasLol,
	"xDD": AliasLol,
	"XDD": AliasLol,
	":P":  AliasLol,
	":-p": AliasLol,
	":-P": AliasLol,
	";)":  AliasLol,
	";-)": AliasLol,
	";D":  AliasLol,

	":|":    AliasNeutral,
	":-|":   AliasNeutral,
	"=|":    AliasNeutral,
	":/":    AliasNeutral,
	":-/":   AliasNeutral,
	":\\":   AliasNeutral,
	":-\\":  AliasNeutral,
	":o":    AliasNeutral,
	":O":    AliasNeutral,
	":-o":   AliasNeutral,
	"o_O":   AliasNeutral,
	"o_o":   AliasNeutral,
	"O_o":   AliasNeutral,
	"o_0":   AliasNeutral,
	"@_@":   AliasNeutral,
	"-__-":  AliasNeutral,
	"(._.)": AliasNeutral,

	"<3":  AliasHeart,
	"<33": AliasHeart,
}

// defaultSlang expands common internet shorthand into plain words.
// Entries can be overridden wholesale via Tokenizer's UsingSlang option,
// typically loaded from a slang.json in the data directory.
var defaultSlang = map[string]string{
	"u":     "you",
	"ur":    "your",
	"r":     "are",
	"y":     "why",
	"im":    "i am",
	"ive":   "i have",
	"dont":  "do not",
	"cant":  "can not",
	"wont":  "will not",
	"pls":   "please",
	"plz":   "please",
	"thx":   "thanks",
	"ty":    "thank you",
	"gr8":   "great",
	"b4":    "before",
	"2day":  "today",
	"2moro": "tomorrow",
	"4ever": "forever",
	"w8":    "wait",
	"m8":    "mate",
	"gud":   "good",
	"luv":   "love",
	"wanna": "want to",
	"gonna": "going to",
	"gotta": "got to",
	"kinda": "kind of",
	"sorta": "sort of",
	"dunno": "do not know",
	"imo":   "in my opinion",
	"imho":  "in my opinion",
	"idk":   "i do not know",
	"irl":   "in real life",
	"tbh":   "to be honest",
	"smh":   "shaking my head",
	"bff":   "best friend",
	"omg":   "oh my god",
	"omfg":  "oh my god",
	"wtf":   "what the hell",
	"ffs":   "for heavens sake",
	"afaik": "as far as i know",
	"btw":   "by the way",
	"fyi":   "for your information",
	"nvm":   "never mind",
	"brb":   "be right back",
	"ppl":   "people",
	"msg":   "message",
	"txt":   "text",
	"bc":    "because",
	"cuz":   "because",
	"coz":   "because",
	"tho":   "though",
	"thru":  "through",
	"nite":  "night",
	"2nite": "tonight",
}

// LoadSlang reads a slang expansion table from a JSON file of the form
// {"shorthand": "expansion", ...}.
func LoadSlang(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read slang file: %w", err)
	}
	slang := make(map[string]string)
	if err := json.Unmarshal(data, &slang); err != nil {
		return nil, fmt.Errorf("parse slang file %s: %w", path, err)
	}
	return slang, nil
}
