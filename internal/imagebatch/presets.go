// imagebatch/presets.go - Marketing image presets
package imagebatch

import (
	"path"
	"strings"
)

// Item is one source image and the exact output it is cropped to
type Item struct {
	Input   string
	Output  string
	Label   string
	Width   int
	Height  int
	Crop    string
	Quality int
}

// Preset is a named batch writing into OutputDir
type Preset struct {
	Name      string
	OutputDir string
	Items     []Item
}

const publicRoot = "client/public"

// URL is where the public site serves an item of p
func (p Preset) URL(it Item) string {
	return "/" + path.Join(strings.TrimPrefix(p.OutputDir, publicRoot+"/"), it.Output)
}

// Group returns the items of p sized w x h, in order
func (p Preset) Group(w, h int) []Item {
	var out []Item
	for _, it := range p.Items {
		if it.Width == w && it.Height == h {
			out = append(out, it)
		}
	}
	return out
}

func hero(in, out, label string) Item {
	return Item{Input: in, Output: out, Label: label, Width: 1920, Height: 1080, Crop: "attention", Quality: 90}
}

func hardware(in, out, label string) Item {
	return Item{Input: in, Output: out, Label: label, Width: 800, Height: 1000, Crop: "attention", Quality: 85}
}

func wide(in, out, label string) Item {
	return Item{Input: in, Output: out, Label: label, Width: 1200, Height: 675, Crop: "attention", Quality: 85}
}

var Equipment = Preset{
	Name:      "equipment",
	OutputDir: publicRoot + "/equipment",
	Items: []Item{
		hero("attached_assets/Background slika studija_1762534727595.png", "hero-studio-background.jpg", "Studio LeFlow"),
		hardware("attached_assets/Apollo Twin x Duo_1762534727594.png", "apollo-twin-duo.jpg", "Apollo Twin X Duo"),
		hardware("attached_assets/WA47 with CUSTOM phillips tube_1762534727595.png", "wa47-microphone.jpg", "Warm Audio WA-47"),
		hardware("attached_assets/Yamaha HS8_1762534727596.png", "yamaha-hs8.jpg", "Yamaha HS8"),
		hardware("attached_assets/DT 990 PRO_1762534727596.png", "dt990-headphones.jpg", "Beyerdynamic DT 990 PRO"),
		hardware("attached_assets/Midi 2_1762534727595.png", "midi-keyboard-1.jpg", "MIDI klavijatura"),
		hardware("attached_assets/Midi i screen_1762534727596.png", "midi-keyboard-2.jpg", "MIDI klavijatura i ekran"),
		wide("attached_assets/Neki od pluginova, uad pultec 1176 avalon 737 la2a 1073 neve_1762534727595.png", "uad-plugins.jpg", "UAD pluginovi"),
		wide("attached_assets/AutoTune x RealTime UAD_1762534727596.png", "autotune-realtime.jpg", "Auto-Tune Realtime UAD"),
	},
}

var Services = Preset{
	Name:      "services",
	OutputDir: publicRoot + "/services",
	Items: []Item{
		wide("attached_assets/WA47 with CUSTOM phillips tube_1762534727595.png", "wa47-microphone-service.jpg", "Snimanje vokala"),
		wide("attached_assets/Midi 2_1762534727595.png", "midi-keyboard-service.jpg", "Produkcija instrumentala"),
		wide("attached_assets/Yamaha HS8_1762534727596.png", "yamaha-hs8-service.jpg", "Mix & Master"),
		wide("attached_assets/Apollo Twin x Duo_1762534727594.png", "apollo-twin-service.jpg", "Obrada zvuka"),
	},
}

// Presets by name
var Presets = map[string]Preset{
	Equipment.Name: Equipment,
	Services.Name:  Services,
}
