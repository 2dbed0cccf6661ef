package pathgen

import (
	"fmt"
	"strings"

	"github.com/yungbote/roadmap-agent/internal/types"
)

const (
	systemCurriculumDesigner = "You are an expert educational curriculum designer."
	systemJSONDesigner       = "You are an expert curriculum designer. Return only valid JSON."
	systemResourceCurator    = "You are a resource curator. Return only valid JSON."
)

func analysisPrompt(state *State) string {
	return fmt.Sprintf(`You are an expert learning path designer. Analyze the following:

Topic: %s
User Background: %s
Goal Level: %s

Provide a brief analysis (2-3 sentences) of:
1. What the user already knows
2. What gaps need to be filled
3. Recommended learning approach

Return ONLY the analysis text, no extra formatting.`, state.Topic, state.Background, state.GoalLevel)
}

func curriculumPrompt(state *State) string {
	return fmt.Sprintf(`Create a detailed learning curriculum for the following:

Topic: %s
User Background: %s
Goal Level: %s
Analysis: %s

Generate a structured curriculum with 4-6 modules. For each module, include:
- Module title
- Learning objectives (2-3 points)
- Key concepts to cover
- Estimated hours
- Prerequisites (if any)

Return ONLY a valid JSON object with this structure:
{
  "title": "Learning Path Title",
  "description": "Brief description",
  "total_hours": 30,
  "modules": [
    {
      "order": 1,
      "title": "Module Title",
      "description": "What this module covers",
      "objectives": ["objective 1", "objective 2"],
      "key_concepts": ["concept 1", "concept 2"],
      "estimated_hours": 5,
      "prerequisites": []
    }
  ]
}

Return ONLY valid JSON, no markdown formatting or extra text.`, state.Topic, state.Background, state.GoalLevel, state.Analysis)
}

func resourcesPrompt(module types.Module, prefs types.Preferences) string {
	return fmt.Sprintf(`For this learning module, recommend 3-5 high-quality resources:

Module: %s
Description: %s
Key Concepts: %s

Preferences:
- Include Videos: %t
- Include Articles: %t
- Include Docs: %t

Recommend specific resources (real or realistic examples). Return ONLY valid JSON:
{
  "resources": [
    {
      "type": "video|article|documentation",
      "title": "Resource Title",
      "description": "Brief description",
      "url": "https://example.com",
      "duration": "30 min" or "10 min read",
      "difficulty": "beginner|intermediate|advanced"
    }
  ]
}

Return ONLY valid JSON, no extra text.`,
		module.Title,
		module.Description,
		strings.Join(module.KeyConcepts, ", "),
		prefs.Videos(),
		prefs.Articles(),
		prefs.Docs(),
	)
}
