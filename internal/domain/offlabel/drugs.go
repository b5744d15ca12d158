package offlabel

import (
	"strings"

	"github.com/paperwork/paperwork/internal/platform/input"
)

// DrugKey identifies a medication of the registry.
type DrugKey string

const (
	Ivabradine   DrugKey = "ivabradine"
	Agomelatin   DrugKey = "agomelatin"
	Vortioxetine DrugKey = "vortioxetine"
	OtherDrug    DrugKey = "other"
)

// Localized holds a German and an English text.
type Localized struct {
	DE string
	EN string
}

func (l Localized) In(german bool) string {
	if german {
		return l.DE
	}
	return l.EN
}

// Indication is one diagnosis and treatment bundle a medication is
// requested for.
type Indication struct {
	Key           string
	Diagnosis     Localized
	TreatmentGoal Localized
	Dose          Localized
	Duration      Localized
	Monitoring    Localized
}

// Drug is a registry entry.
type Drug struct {
	Key         DrugKey
	Name        Localized
	ApprovedFor Localized
	Indications []Indication
	Sources     []string
}

// Indication returns the indication with key, or the first one when key is
// blank or unknown. Drugs without indications report false.
func (d Drug) Indication(key string) (Indication, bool) {
	if len(d.Indications) == 0 {
		return Indication{}, false
	}
	for _, ind := range d.Indications {
		if ind.Key == key {
			return ind, true
		}
	}
	return d.Indications[0], true
}

var registry = map[DrugKey]Drug{
	Ivabradine: {
		Key:         Ivabradine,
		Name:        Localized{"Ivabradin", "Ivabradine"},
		ApprovedFor: Localized{"chronische Herzinsuffizienz und stabile Angina pectoris", "chronic heart failure and stable angina pectoris"},
		Indications: []Indication{{
			Key:           "pots",
			Diagnosis:     Localized{"posturales orthostatisches Tachykardiesyndrom (POTS) bei ME/CFS", "postural orthostatic tachycardia syndrome (POTS) with ME/CFS"},
			TreatmentGoal: Localized{"Senkung der Herzfrequenz im Stehen und Verbesserung der Orthostasetoleranz", "lowering the standing heart rate and improving orthostatic tolerance"},
			Dose:          Localized{"2,5 mg bis 7,5 mg zweimal täglich", "2.5 mg to 7.5 mg twice daily"},
			Duration:      Localized{"zunächst drei Monate, danach Überprüfung", "initially three months, then review"},
			Monitoring:    Localized{"Herzfrequenz, Blutdruck und EKG zu Beginn und nach Dosisänderung", "heart rate, blood pressure and ECG at start and after dose changes"},
		}},
		Sources: []string{
			"Taub PR, Zadourian A, Lo HC, et al. Randomized Trial of Ivabradine in Patients With Hyperadrenergic Postural Orthostatic Tachycardia Syndrome. J Am Coll Cardiol. 2021;77(7):861-871.",
		},
	},
	Agomelatin: {
		Key:         Agomelatin,
		Name:        Localized{"Agomelatin", "Agomelatine"},
		ApprovedFor: Localized{"depressive Episoden bei Erwachsenen", "major depressive episodes in adults"},
		Indications: []Indication{
			{
				Key:           "meCfsSleep",
				Diagnosis:     Localized{"Fatigue und nicht erholsamer Schlaf bei ME/CFS", "fatigue and unrefreshing sleep with ME/CFS"},
				TreatmentGoal: Localized{"Verbesserung der Schlafqualität und Linderung der Fatigue", "better sleep quality and less fatigue"},
				Dose:          Localized{"25 mg zur Nacht, bei Bedarf 50 mg", "25 mg at bedtime, 50 mg if required"},
				Duration:      Localized{"zunächst zwölf Wochen, danach Überprüfung", "initially twelve weeks, then review"},
				Monitoring:    Localized{"Leberwerte vor Beginn sowie nach 3, 6, 12 und 24 Wochen", "liver function tests before start and after 3, 6, 12 and 24 weeks"},
			},
			{
				Key:           "longCovidFatigue",
				Diagnosis:     Localized{"Fatigue bei Post-COVID-Syndrom", "fatigue with post-COVID condition"},
				TreatmentGoal: Localized{"Linderung der Fatigue und Stabilisierung des Schlaf-Wach-Rhythmus", "less fatigue and a stable sleep-wake rhythm"},
				Dose:          Localized{"25 mg zur Nacht", "25 mg at bedtime"},
				Duration:      Localized{"zunächst zwölf Wochen, danach Überprüfung", "initially twelve weeks, then review"},
				Monitoring:    Localized{"Leberwerte vor Beginn sowie nach 3, 6, 12 und 24 Wochen", "liver function tests before start and after 3, 6, 12 and 24 weeks"},
			},
		},
		Sources: []string{
			"Pardini M, Cordano C, Benedetti L, et al. Agomelatine but not melatonin improves fatigue perception: a longitudinal proof-of-concept study. Eur Neuropsychopharmacol. 2014;24(6):939-944.",
		},
	},
	Vortioxetine: {
		Key:         Vortioxetine,
		Name:        Localized{"Vortioxetin", "Vortioxetine"},
		ApprovedFor: Localized{"depressive Episoden bei Erwachsenen", "major depressive episodes in adults"},
		Indications: []Indication{
			{
				Key:           "longCovidCognition",
				Diagnosis:     Localized{"kognitive Störungen bei Post-COVID-Syndrom", "cognitive impairment with post-COVID condition"},
				TreatmentGoal: Localized{"Verbesserung von Konzentration, Gedächtnis und Verarbeitungsgeschwindigkeit", "better concentration, memory and processing speed"},
				Dose:          Localized{"5 mg bis 20 mg einmal täglich", "5 mg to 20 mg once daily"},
				Duration:      Localized{"zunächst acht Wochen, danach Überprüfung", "initially eight weeks, then review"},
				Monitoring:    Localized{"kognitive Testung zu Beginn und nach acht Wochen, Natrium bei älteren Personen", "cognitive testing at start and after eight weeks, sodium in older patients"},
			},
			{
				Key:           "meCfsCognition",
				Diagnosis:     Localized{"kognitive Störungen (Brain Fog) bei ME/CFS", "cognitive impairment (brain fog) with ME/CFS"},
				TreatmentGoal: Localized{"Verbesserung der kognitiven Belastbarkeit", "better cognitive endurance"},
				Dose:          Localized{"5 mg bis 10 mg einmal täglich", "5 mg to 10 mg once daily"},
				Duration:      Localized{"zunächst acht Wochen, danach Überprüfung", "initially eight weeks, then review"},
				Monitoring:    Localized{"kognitive Testung zu Beginn und nach acht Wochen", "cognitive testing at start and after eight weeks"},
			},
		},
		Sources: []string{
			"McIntyre RS, Phan L, Kwan ATH, et al. Vortioxetine for the treatment of post-COVID-19 condition: a randomized controlled trial. Brain. 2024;147(3):849-857.",
		},
	},
	OtherDrug: {
		Key:  OtherDrug,
		Name: Localized{"anderes Arzneimittel", "other medication"},
	},
}

var drugAliases = map[string]DrugKey{
	"ivabradine":   Ivabradine,
	"ivabradin":    Ivabradine,
	"procoralan":   Ivabradine,
	"agomelatin":   Agomelatin,
	"agomelatine":  Agomelatin,
	"valdoxan":     Agomelatin,
	"vortioxetine": Vortioxetine,
	"vortioxetin":  Vortioxetine,
	"brintellix":   Vortioxetine,
	"trintellix":   Vortioxetine,
}

// NormalizeDrug maps a free-text or enum value onto the registry. Unknown
// values, including non-strings, normalize to OtherDrug.
func NormalizeDrug(v any) DrugKey {
	s := input.StringValue(v)
	if s == nil {
		return OtherDrug
	}
	if k, ok := drugAliases[strings.ToLower(*s)]; ok {
		return k
	}
	return OtherDrug
}

// LookupDrug returns the registry entry for key.
func LookupDrug(key DrugKey) (Drug, bool) {
	d, ok := registry[key]
	return d, ok
}

// Drugs lists the registry keys in display order.
func Drugs() []DrugKey {
	return []DrugKey{Ivabradine, Agomelatin, Vortioxetine, OtherDrug}
}
