package puzzle

// Themes maps a word search theme to its word list.
var Themes = map[string][]string{
	"animals": {
		"ELEPHANT", "GIRAFFE", "PENGUIN", "DOLPHIN", "KANGAROO", "TIGER", "ZEBRA",
		"MONKEY", "PANDA", "KOALA", "CHEETAH", "LEOPARD", "EAGLE", "FALCON",
		"SHARK", "WHALE", "OCTOPUS", "RABBIT", "SQUIRREL", "HEDGEHOG",
	},
	"food": {
		"PIZZA", "BURGER", "PASTA", "SUSHI", "TACOS", "CURRY", "SALAD", "COFFEE",
		"CHOCOLATE", "CHEESE", "APPLE", "BANANA", "ORANGE", "MANGO", "BREAD",
		"RICE", "CHICKEN", "SALMON", "COOKIES", "CAKE",
	},
	"travel": {
		"PARIS", "LONDON", "TOKYO", "BEACH", "MOUNTAIN", "DESERT", "ISLAND",
		"AIRPORT", "HOTEL", "PASSPORT", "LUGGAGE", "CRUISE", "SAFARI", "CAMPING",
		"HIKING", "TRAIN", "PLANE", "ROAD", "JOURNEY", "ADVENTURE",
	},
	"tech": {
		"COMPUTER", "INTERNET", "SOFTWARE", "CODING", "DATABASE", "PYTHON",
		"JAVASCRIPT", "WEBSITE", "MOBILE", "CLOUD", "SERVER", "NETWORK",
		"SECURITY", "DIGITAL", "ROBOT", "VIRTUAL", "GAMING", "SCREEN", "KEYBOARD",
		"MOUSE",
	},
	"nature": {
		"FOREST", "OCEAN", "RIVER", "MOUNTAIN", "FLOWER", "TREE", "SUNSET",
		"RAINBOW", "CLOUD", "STORM", "THUNDER", "LIGHTNING", "BREEZE", "VALLEY",
		"CANYON", "MEADOW", "STREAM", "WATERFALL", "GLACIER", "VOLCANO",
	},
	"music": {
		"GUITAR", "PIANO", "DRUMS", "VIOLIN", "TRUMPET", "SAXOPHONE", "FLUTE",
		"SINGER", "CONCERT", "MELODY", "RHYTHM", "HARMONY", "TEMPO", "JAZZ",
		"ROCK", "CLASSICAL", "BLUES", "ORCHESTRA", "BAND", "CHORUS",
	},
	"sports": {
		"FOOTBALL", "BASKETBALL", "TENNIS", "CRICKET", "BASEBALL", "HOCKEY",
		"SWIMMING", "RUNNING", "CYCLING", "GOLF", "BOXING", "WRESTLING", "SURFING",
		"SKIING", "SKATING", "RUGBY", "VOLLEYBALL", "BADMINTON", "ARCHERY",
		"FENCING",
	},
	"movies": {
		"ACTION", "COMEDY", "DRAMA", "THRILLER", "HORROR", "ROMANCE", "FANTASY",
		"MYSTERY", "ADVENTURE", "WESTERN", "DIRECTOR", "ACTOR", "SCRIPT", "CINEMA",
		"SCREEN", "PREMIERE", "SEQUEL", "BLOCKBUSTER", "OSCAR", "CREDITS",
	},
	"space": {
		"GALAXY", "PLANET", "STAR", "MOON", "COMET", "ASTEROID", "NEBULA",
		"COSMOS", "ORBIT", "ROCKET", "SATELLITE", "ASTRONAUT", "TELESCOPE",
		"UNIVERSE", "SOLAR", "METEOR", "GRAVITY", "ALIEN", "SPACESHIP", "MARS",
	},
	"christmas": {
		"CHRISTMAS", "SNOWFLAKE", "REINDEER", "PRESENTS", "SANTA", "BELLS",
		"CAROLS", "SLEIGH", "MISTLETOE", "ORNAMENT", "TINSEL", "WREATH",
		"GINGERBREAD", "STOCKINGS", "COOKIES", "CHIMNEY", "ELVES", "FESTIVE",
		"DECEMBER", "FAMILY",
	},
	"general": {
		"HELLO", "FRIEND", "WELCOME", "CHAT", "GAMES", "CONNECT", "SMILE", "LAUGH",
		"HAPPY", "JOY", "FUN", "PLAY", "SHARE", "KINDNESS", "PEACE", "HOPE",
		"DREAM", "MAGIC", "WONDER", "SUNSHINE",
	},
}

// DefaultTheme is used for unknown themes.
const DefaultTheme = "general"
