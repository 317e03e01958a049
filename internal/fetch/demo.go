package fetch

import (
	"fmt"
	"time"

	"signalsource-engine/internal/domain"
)

// DemoLeads is the fixed fallback dataset used when both providers come back
// empty or failed, so the dashboard never renders blank. Deterministic for a
// given now.
func DemoLeads(now time.Time) []domain.SignalLead {
	ms := now.UnixMilli()
	demoID := func(src domain.Source, n int) string {
		return fmt.Sprintf("demo_%s_%d_%d", src, ms, n)
	}

	return []domain.SignalLead{
		{
			Founder: domain.FounderSeed{
				Name:        "Arjun Sharma",
				Username:    "arjun_builds",
				Location:    "Bangalore, India",
				Followers:   2500,
				Description: "Building the future of fintech in India",
			},
			Signal: domain.Signal{
				ID:              demoID(domain.SourceTwitter, 1),
				FounderID:       domain.FounderID(domain.SourceTwitter, "arjun_builds"),
				Source:          domain.SourceTwitter,
				Type:            domain.TypeFunding,
				Title:           "Just raised our pre-seed round! Building the next-gen payment platform for SMEs",
				Description:     "Excited to announce that we've raised $500K in pre-seed funding to revolutionize payments for small businesses across India. Our MVP is live and growing 20% MoM!",
				URL:             "https://twitter.com/arjun_builds/status/demo",
				Strength:        92,
				EngagementCount: 156,
				FollowersCount:  2500,
				DetectedAt:      now.Add(-2 * time.Hour),
			},
		},
		{
			Founder: domain.FounderSeed{
				Name:        "Priya Patel",
				Username:    "priya-dev",
				Location:    "Mumbai, India",
				Followers:   890,
				Description: "Full-stack developer, AI enthusiast",
			},
			Signal: domain.Signal{
				ID:              demoID(domain.SourceGithub, 2),
				FounderID:       domain.FounderID(domain.SourceGithub, "priya-dev"),
				Source:          domain.SourceGithub,
				Type:            domain.TypeProduct,
				Title:           "Active development on ai-tutor-platform",
				Description:     "Building an AI-powered tutoring platform for Indian students. Using React, Node.js, and OpenAI API.",
				URL:             "https://github.com/priya-dev/ai-tutor-platform",
				Strength:        78,
				EngagementCount: 45,
				FollowersCount:  890,
				DetectedAt:      now.Add(-4 * time.Hour),
			},
		},
		{
			Founder: domain.FounderSeed{
				Name:        "Rohit Kumar",
				Username:    "rohit_startup",
				Location:    "Delhi, India",
				Followers:   1200,
				Description: "Serial entrepreneur, ex-Flipkart",
			},
			Signal: domain.Signal{
				ID:              demoID(domain.SourceTwitter, 3),
				FounderID:       domain.FounderID(domain.SourceTwitter, "rohit_startup"),
				Source:          domain.SourceTwitter,
				Type:            domain.TypeHiring,
				Title:           "Hiring our first 5 engineers! Join us in building the Uber for logistics",
				Description:     "We're scaling fast and need talented engineers to join our logistics startup. Already processing 1000+ orders daily across 3 cities.",
				URL:             "https://twitter.com/rohit_startup/status/demo",
				Strength:        85,
				EngagementCount: 89,
				FollowersCount:  1200,
				DetectedAt:      now.Add(-6 * time.Hour),
			},
		},
		{
			Founder: domain.FounderSeed{
				Name:        "Sneha Reddy",
				Username:    "sneha-codes",
				Location:    "Hyderabad, India",
				Followers:   650,
				Description: "Building healthcare solutions",
			},
			Signal: domain.Signal{
				ID:              demoID(domain.SourceGithub, 4),
				FounderID:       domain.FounderID(domain.SourceGithub, "sneha-codes"),
				Source:          domain.SourceGithub,
				Type:            domain.TypeProduct,
				Title:           "Active development on telemedicine-app",
				Description:     "Creating a telemedicine platform to connect rural patients with doctors. Built with React Native and Firebase.",
				URL:             "https://github.com/sneha-codes/telemedicine-app",
				Strength:        82,
				EngagementCount: 67,
				FollowersCount:  650,
				DetectedAt:      now.Add(-8 * time.Hour),
			},
		},
		{
			Founder: domain.FounderSeed{
				Name:        "Vikash Singh",
				Username:    "vikash_builds",
				Location:    "Pune, India",
				Followers:   3400,
				Description: "Building SaaS for Indian SMBs",
			},
			Signal: domain.Signal{
				ID:              demoID(domain.SourceTwitter, 5),
				FounderID:       domain.FounderID(domain.SourceTwitter, "vikash_builds"),
				Source:          domain.SourceTwitter,
				Type:            domain.TypeProduct,
				Title:           "Launched on Product Hunt today! Our inventory management SaaS for retailers",
				Description:     "After 8 months of building, we're live on Product Hunt! Our SaaS helps small retailers manage inventory efficiently. Already have 50+ paying customers.",
				URL:             "https://twitter.com/vikash_builds/status/demo",
				Strength:        88,
				EngagementCount: 234,
				FollowersCount:  3400,
				DetectedAt:      now.Add(-12 * time.Hour),
			},
		},
	}
}
