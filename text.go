package main

import "github.com/meliem/meliem.github.io/internal/content"

var (
	AboutMe = `I build software that is useful first and a little playful second. Most of my
projects start from a concrete problem, a flaky disk, a slow pipeline, a noisy network, and
turn into a chance to learn a new tool properly.

When I am not at a keyboard I am usually repairing hardware on the bench or out on the coast
around **Brest**.`

	ProjectIDS = `An intrusion detection system that scores network flows with a small neural
network and raises alerts through Suricata rules.`

	IDSChallenges = `The model had to score flows in real time on modest hardware, so it was
pruned and quantized until inference kept up with the capture rate.

The training data was heavily **imbalanced**, with attacks a tiny fraction of the traffic.
Resampling the minority classes was what made the detector useful.`

	ProjectPipeline = `A batch ETL pipeline moving operational data into a reporting warehouse,
scheduled with Airflow and tuned so the nightly run fits in under an hour.`

	ProjectRecovery = `A bench workflow and tooling for recovering data from physically damaged
drives, from imaging with retries to rebuilding file tables.`

	ProjectPortfolio = `This site: Go and Gin on the server, HTMX for partial updates, and an
interactive particle field that adapts its budget to the device it runs on.`

	PrivacyPolicy = `## What is collected

Page views are counted with a **hashed** client address, the user agent and the path.
Raw addresses are never stored. Requests sent with ` + "`DNT: 1`" + ` are not counted.

## Retention

Visit records older than twelve months are deleted automatically.

## Contact messages

Messages sent through the contact form are stored so they can be answered, and are
forwarded by email.`
)

// defaultSite is served when no content file is configured.
func defaultSite() *content.Site {
	return &content.Site{
		Profile: content.Profile{
			Name:     "Elie",
			Title:    "Creative Developer",
			Tagline:  "Data, security and the hardware underneath.",
			About:    AboutMe,
			Email:    "contact@meliem.dev",
			Location: "Brest, France",
			Links: []content.Link{
				{Label: "GitHub", URL: "https://github.com/meliem"},
			},
		},
		Work: []content.Entry{
			{
				Title:        "Data Engineer (apprenticeship)",
				Organization: "Regional energy operator",
				Start:        "Sept 2023",
				End:          "Present",
				Highlights: []string{
					"Rebuilt the nightly ETL so reports land before the morning shift",
					"Moved ad hoc SQL extracts into versioned, tested pipeline steps",
				},
			},
			{
				Title:        "Repair Technician",
				Organization: "Independent repair shop",
				Start:        "June 2020",
				End:          "Aug 2023",
				Highlights: []string{
					"Board-level diagnosis and repair of phones, laptops and consoles",
					"Recovered data from failing drives for private and business clients",
				},
			},
		},
		Education: []content.Entry{
			{
				Title:        "Master's in Computer Science",
				Organization: "Université de Bretagne Occidentale",
				Start:        "Sept 2023",
				End:          "Present",
				Highlights: []string{
					"Focus on data engineering and network security",
				},
			},
			{
				Title:        "Bachelor's in Computer Science",
				Organization: "Université de Bretagne Occidentale",
				Start:        "Sept 2020",
				End:          "June 2023",
			},
		},
		Projects: []content.Project{
			{
				ID:           "intrusion-detection",
				Title:        "Neural Intrusion Detection",
				Description:  ProjectIDS,
				Categories:   []string{"cyber", "data"},
				Tags:         []string{"Python", "TensorFlow", "Suricata"},
				Featured:     true,
				Technologies: []string{"Python", "TensorFlow", "Scikit-learn", "Pandas", "NumPy", "Matplotlib"},
				Features: []string{
					"Real-time detection of intrusion attempts",
					"Classification of attack types (DoS, DDoS, brute force)",
					"Admin view for browsing alerts",
					"Continuous learning to improve precision",
				},
				Challenges: IDSChallenges,
				Links:      []content.Link{{Label: "Source", URL: "https://github.com/"}},
			},
			{
				ID:          "etl-pipeline",
				Title:       "Warehouse ETL Pipeline",
				Description: ProjectPipeline,
				Categories:  []string{"data"},
				Tags:        []string{"Airflow", "Spark", "PostgreSQL"},
				Featured:    true,
			},
			{
				ID:          "data-recovery",
				Title:       "Drive Data Recovery",
				Description: ProjectRecovery,
				Categories:  []string{"elec"},
				Tags:        []string{"Hardware", "ddrescue"},
			},
			{
				ID:          "portfolio",
				Title:       "This Portfolio",
				Description: ProjectPortfolio,
				Categories:  []string{"dev"},
				Tags:        []string{"Go", "Gin", "HTMX"},
				Featured:    true,
			},
		},
		Skills: []content.Skill{
			{Name: "Python", Level: 90, Color: "#3776AB", Category: "dev", Tools: []string{"Flask", "Pandas", "NumPy"}},
			{Name: "Go", Level: 75, Color: "#00ADD8", Category: "dev", Tools: []string{"Gin", "SQLite"}},
			{Name: "SQL", Level: 85, Color: "#336791", Category: "data", Tools: []string{"PostgreSQL", "SQLite"}},
			{Name: "ETL", Level: 85, Color: "#E97627", Category: "data", Tools: []string{"Spark", "Airflow"}},
			{Name: "IDS", Level: 85, Color: "#D32F2F", Category: "cyber", Tools: []string{"Snort", "Suricata"}},
			{Name: "Cloud", Level: 75, Color: "#0089D6", Category: "infra", Tools: []string{"Docker", "AWS"}},
			{Name: "Hardware", Level: 90, Color: "#FF7043", Category: "elec", Tools: []string{"Soldering", "Oscilloscope"}},
		},
		Privacy: PrivacyPolicy,
	}
}
