package offlabel

// letterTexts is the fixed copy of the three letters. Format verbs are
// documented next to each field that takes arguments.
type letterTexts struct {
	placeholder    string
	salutation     string
	salutationName string // name
	closing        string
	dateLine       string // place, date
	insuranceNo    string // number
	phone          string // number
	born           string // birth date

	kkSubject string // drug
	kkIntro   string // drug, approved use
	points    [10]string

	diagnosisKK     string // diagnosis
	diagnosisDoctor string // patient, diagnosis
	severityIntro   string
	severityNone    string
	noStandard      string
	priorTherapies  string // prior therapies
	treatmentKK     string // drug, goal
	treatmentDoctor string // drug, goal
	regimen         string // dose, duration, monitoring
	evidence        string // drug
	deadline        string
	emergency       string
	indicia         string
	mdReview        string

	attachmentsHeading string
	attStatement       string
	attReports         string
	attSources         string
	attDisability      string
	attCare            string
	insuredLabel       string

	arztSubject     string // drug
	arztBody        []string
	arztBodyDrug    string // drug
	arztAttachments []string
	patientLabel    string
	liabilityDate   string

	part3Subject string // drug
	part3Intro   string
	part3Closing string
	doctorLabel  string

	checklist []string
}

var textsDE = letterTexts{
	placeholder:    "[bitte ergänzen]",
	salutation:     "Sehr geehrte Damen und Herren,",
	salutationName: "Guten Tag %s,",
	closing:        "Mit freundlichen Grüßen",
	dateLine:       "%s, %s",
	insuranceNo:    "Versichertennummer: %s",
	phone:          "Tel.: %s",
	born:           "geb. %s",

	kkSubject: "Antrag auf Kostenübernahme für %s im Off-Label-Use",
	kkIntro:   "hiermit beantrage ich die Übernahme der Kosten für eine Behandlung mit %s außerhalb der zugelassenen Anwendungsgebiete (zugelassen für %s). Meinen Antrag begründe ich wie folgt:",
	points: [10]string{
		"Diagnose",
		"Schwere der Erkrankung",
		"Fehlende Standardtherapie",
		"Beantragte Behandlung",
		"Dosierung, Dauer und Verlaufskontrolle",
		"Studienlage",
		"Grundrechtsorientierte Auslegung",
		"Entscheidungsfrist",
		"Indizien für einen Behandlungserfolg",
		"Prüfung der Evidenz",
	},

	diagnosisKK:     "Bei mir wurde %s diagnostiziert.",
	diagnosisDoctor: "Bei %s besteht %s.",
	severityIntro:   "Die Erkrankung ist schwerwiegend und beeinträchtigt die Lebensqualität auf Dauer nachhaltig:",
	severityNone:    "Die Erkrankung ist schwerwiegend und beeinträchtigt die Lebensqualität auf Dauer nachhaltig.",
	noStandard:      "Eine allgemein anerkannte, dem medizinischen Standard entsprechende Behandlung steht nicht zur Verfügung.",
	priorTherapies:  "Bisherige Behandlungsversuche: %s",
	treatmentKK:     "Meine behandelnde Praxis hält eine Behandlung mit %s für medizinisch angezeigt. Therapieziel: %s.",
	treatmentDoctor: "Ich halte eine Behandlung mit %s für medizinisch angezeigt. Therapieziel: %s.",
	regimen:         "Dosierung: %s. Behandlungsdauer: %s. Verlaufskontrolle: %s.",
	evidence:        "Nach dem Stand der wissenschaftlichen Erkenntnisse besteht die begründete Aussicht, dass mit %s ein Behandlungserfolg erzielt werden kann (BSG, Urteil vom 19.03.2002, B 1 KR 37/00 R). Die Quellen sind beigefügt.",
	deadline:        "Ich bitte um eine Entscheidung innerhalb der Fristen des § 13 Abs. 3a SGB V.",
	emergency:       "Hilfsweise berufe ich mich auf § 2 Abs. 1a SGB V. Es liegt eine wertungsmäßig mit einer lebensbedrohlichen Erkrankung vergleichbare Erkrankung vor, für die eine allgemein anerkannte Behandlung nicht zur Verfügung steht (BVerfG, Beschluss vom 06.12.2005, 1 BvR 347/98).",
	indicia:         "Es besteht eine auf Indizien gestützte, nicht ganz fernliegende Aussicht auf Heilung oder eine spürbare positive Einwirkung auf den Krankheitsverlauf.",
	mdReview:        "Sollten Zweifel bestehen, bitte ich darum, die vorliegende Evidenz nach der Begutachtungsanleitung Off-Label-Use des Medizinischen Dienstes prüfen zu lassen.",

	attachmentsHeading: "Anlagen",
	attStatement:       "Ärztliche Stellungnahme",
	attReports:         "Befundberichte",
	attSources:         "Quellenverzeichnis",
	attDisability:      "Kopie des Schwerbehindertenausweises",
	attCare:            "Kopie des Pflegegradbescheids",
	insuredLabel:       "Versicherte Person",

	arztSubject:  "Bitte um Unterstützung meines Antrags auf Off-Label-Use von %s",
	arztBodyDrug: "ich möchte bei meiner Krankenkasse die Kostenübernahme für eine Behandlung mit %s im Off-Label-Use beantragen.",
	arztBody: []string{
		"Ich bitte Sie, die beigefügte ärztliche Stellungnahme zu prüfen, bei Bedarf anzupassen und zu unterschreiben.",
		"Die Erklärung zur Haftung am Ende dieses Schreibens habe ich unterschrieben.",
	},
	arztAttachments: []string{"Entwurf der ärztlichen Stellungnahme", "Quellenverzeichnis"},
	patientLabel:    "Patientin / Patient",
	liabilityDate:   "Ort, Datum: ____________________",

	part3Subject: "Ärztliche Stellungnahme zum Off-Label-Use von %s",
	part3Intro:   "zu dem Antrag meiner Patientin / meines Patienten nehme ich wie folgt Stellung.",
	part3Closing: "Ich unterstütze den Antrag.",
	doctorLabel:  "Ärztin / Arzt (Stempel, Unterschrift)",

	checklist: []string{
		"Antrag unterschrieben",
		"Ärztliche Stellungnahme von der Praxis unterschrieben",
		"Befundberichte beigefügt",
		"Quellenverzeichnis beigefügt",
		"Kopien für die eigenen Unterlagen angefertigt",
		"Eingang bei der Krankenkasse notiert (Entscheidung binnen drei Wochen, mit Gutachten fünf Wochen)",
	},
}

var textsEN = letterTexts{
	placeholder:    "[please complete]",
	salutation:     "Dear Sir or Madam,",
	salutationName: "Dear %s,",
	closing:        "Kind regards",
	dateLine:       "%s, %s",
	insuranceNo:    "Insurance number: %s",
	phone:          "Phone: %s",
	born:           "born %s",

	kkSubject: "Application for reimbursement of %s (off-label use)",
	kkIntro:   "I hereby apply for reimbursement of a treatment with %s outside its approved indications (approved for %s). My application is based on the following:",
	points: [10]string{
		"Diagnosis",
		"Severity of the illness",
		"No standard treatment",
		"Requested treatment",
		"Dose, duration and monitoring",
		"Evidence",
		"Constitutional interpretation",
		"Decision deadline",
		"Indications of treatment success",
		"Review of the evidence",
	},

	diagnosisKK:     "I have been diagnosed with %s.",
	diagnosisDoctor: "%s has been diagnosed with %s.",
	severityIntro:   "The illness is serious and permanently impairs quality of life:",
	severityNone:    "The illness is serious and permanently impairs quality of life.",
	noStandard:      "No generally accepted treatment that meets the medical standard is available.",
	priorTherapies:  "Previous treatment attempts: %s",
	treatmentKK:     "My treating practice considers a treatment with %s medically indicated. Treatment goal: %s.",
	treatmentDoctor: "I consider a treatment with %s medically indicated. Treatment goal: %s.",
	regimen:         "Dose: %s. Duration: %s. Monitoring: %s.",
	evidence:        "According to current scientific knowledge there is a reasonable prospect that %s achieves a treatment success (Federal Social Court, judgment of 19 March 2002, B 1 KR 37/00 R). The sources are enclosed.",
	deadline:        "Please decide within the deadlines of section 13 (3a) SGB V.",
	emergency:       "In the alternative I rely on section 2 (1a) SGB V. The illness is comparable in severity to a life-threatening illness and no generally accepted treatment is available (Federal Constitutional Court, order of 6 December 2005, 1 BvR 347/98).",
	indicia:         "There is a prospect of cure or a noticeable positive effect on the course of the illness that is supported by indications and not entirely remote.",
	mdReview:        "Should there be any doubt, please have the evidence reviewed under the off-label assessment guideline of the Medical Service.",

	attachmentsHeading: "Enclosures",
	attStatement:       "Physician statement",
	attReports:         "Medical reports",
	attSources:         "List of sources",
	attDisability:      "Copy of the disability card",
	attCare:            "Copy of the care level notice",
	insuredLabel:       "Insured person",

	arztSubject:  "Request for support of my off-label application for %s",
	arztBodyDrug: "I would like to apply to my health insurer for reimbursement of a treatment with %s (off-label use).",
	arztBody: []string{
		"Please review the enclosed physician statement, adapt it if necessary and sign it.",
		"I have signed the liability declaration at the end of this letter.",
	},
	arztAttachments: []string{"Draft physician statement", "List of sources"},
	patientLabel:    "Patient",
	liabilityDate:   "Place, date: ____________________",

	part3Subject: "Physician statement on the off-label use of %s",
	part3Intro:   "I would like to comment on my patient's application as follows.",
	part3Closing: "I support the application.",
	doctorLabel:  "Physician (stamp, signature)",

	checklist: []string{
		"Application signed",
		"Physician statement signed by the practice",
		"Medical reports enclosed",
		"List of sources enclosed",
		"Copies made for your own records",
		"Date of receipt by the insurer noted (decision within three weeks, five weeks with an expert opinion)",
	},
}

func textsFor(german bool) letterTexts {
	if german {
		return textsDE
	}
	return textsEN
}
