// internal/models/house_rules.go
package models

import "fmt"

// HouseRules captures the optional rules a table plays with. Each rule is
// independently togglable.
type HouseRules struct {
	// Stacking lets a DrawTwo be answered with a DrawTwo (and WildDrawFour
	// with WildDrawFour), deferring the accumulated draw to the next player.
	Stacking bool `json:"stacking"`

	// ForcePlay requires a freshly drawn card to be played right away if legal.
	ForcePlay bool `json:"forcePlay"`

	// SevenTrade makes a played 7 swap the actor's hand with a target's hand.
	SevenTrade bool `json:"sevenTrade"`

	// ZeroRotate makes a played 0 pass every hand one seat along the direction of play.
	ZeroRotate bool `json:"zeroRotate"`

	// FalseUnoPenalty is the number of cards drawn for calling UNO with more than one card.
	FalseUnoPenalty int `json:"falseUnoPenalty"`

	// ChallengePenalty is drawn by a player caught holding one card without calling UNO.
	ChallengePenalty int `json:"challengePenalty"`

	// FailedChallengePenalty is drawn by a challenger whose challenge did not hold.
	FailedChallengePenalty int `json:"failedChallengePenalty"`

	// HandSize is the number of cards dealt to each player.
	HandSize int `json:"handSize"`
}

// DefaultHouseRules returns the rules used when a game is created without overrides.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		FalseUnoPenalty:        2,
		ChallengePenalty:       2,
		FailedChallengePenalty: 1,
		HandSize:               7,
	}
}

// Update will update the house rules with the new rules provided.
// If a rule is not set or defined, it will be ignored, and the old value will persist.
func (rules *HouseRules) Update(newRules map[string]interface{}) error {
	assignBool := func(field *bool, key string) error {
		if val, exists := newRules[key]; exists && val != nil {
			b, ok := val.(bool)
			if !ok {
				return fmt.Errorf("invalid type for %s", key)
			}
			*field = b
		}
		return nil
	}

	assignInt := func(field *int, key string, minVal, maxVal int) error {
		val, exists := newRules[key]
		if !exists || val == nil {
			return nil
		}
		// JSON numbers decode as float64
		var n int
		switch v := val.(type) {
		case float64:
			n = int(v)
		case int:
			n = v
		default:
			return fmt.Errorf("invalid type for %s", key)
		}
		if n < minVal || n > maxVal {
			return fmt.Errorf("%s must be between %d and %d", key, minVal, maxVal)
		}
		*field = n
		return nil
	}

	if err := assignBool(&rules.Stacking, "stacking"); err != nil {
		return err
	}
	if err := assignBool(&rules.ForcePlay, "forcePlay"); err != nil {
		return err
	}
	if err := assignBool(&rules.SevenTrade, "sevenTrade"); err != nil {
		return err
	}
	if err := assignBool(&rules.ZeroRotate, "zeroRotate"); err != nil {
		return err
	}
	if err := assignInt(&rules.FalseUnoPenalty, "falseUnoPenalty", 0, 10); err != nil {
		return err
	}
	if err := assignInt(&rules.ChallengePenalty, "challengePenalty", 0, 10); err != nil {
		return err
	}
	if err := assignInt(&rules.FailedChallengePenalty, "failedChallengePenalty", 0, 10); err != nil {
		return err
	}
	if err := assignInt(&rules.HandSize, "handSize", 1, 15); err != nil {
		return err
	}
	return nil
}

// ParseRules converts a map of rules to a HouseRules struct, starting from current.
func ParseRules(rules map[string]interface{}, current HouseRules) (HouseRules, error) {
	houseRules := current
	err := houseRules.Update(rules)
	return houseRules, err
}
