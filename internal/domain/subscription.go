package domain

// SubscriptionTier identifica el plan de pago del usuario.
type SubscriptionTier string

const (
	TierFree     SubscriptionTier = "free"
	TierBasic    SubscriptionTier = "basic"
	TierPremium  SubscriptionTier = "premium"
	TierUltimate SubscriptionTier = "ultimate"
	// TierLifetime se vende como plan aparte pero gatea igual que ultimate.
	TierLifetime SubscriptionTier = "lifetime"
)

// Identificadores de features gateadas por plan.
const (
	FeatureVoiceMessages    = "voice_messages"
	FeaturePhotoSharing     = "photo_sharing"
	FeatureCustomActivities = "custom_activities"
	FeatureVideoCalls       = "video_calls"
	FeaturePriorityResponse = "priority_response"
)

// UnlimitedMessageLimit es el centinela para planes "sin limite". Se usa un
// numero grande en vez de infinito para que la aritmetica de cupos no rompa.
const UnlimitedMessageLimit = 999999

// PermanentRetention marca retencion de memorias sin vencimiento.
const PermanentRetention = -1

// TierConfig es la configuracion estatica de un plan. El acceso a features y
// el cupo diario son funcion pura del plan: TrustLevel jamas participa.
type TierConfig struct {
	DailyMessageLimit   int
	Features            map[string]bool
	MemoryRetentionDays int
}

var tierConfigs = map[SubscriptionTier]TierConfig{
	TierFree: {
		DailyMessageLimit:   50,
		Features:            map[string]bool{},
		MemoryRetentionDays: 7,
	},
	TierBasic: {
		DailyMessageLimit: 200,
		Features: map[string]bool{
			FeatureVoiceMessages: true,
		},
		MemoryRetentionDays: 30,
	},
	TierPremium: {
		DailyMessageLimit: 1000,
		Features: map[string]bool{
			FeatureVoiceMessages:    true,
			FeaturePhotoSharing:     true,
			FeatureCustomActivities: true,
		},
		MemoryRetentionDays: 180,
	},
	TierUltimate: {
		DailyMessageLimit: UnlimitedMessageLimit,
		Features: map[string]bool{
			FeatureVoiceMessages:    true,
			FeaturePhotoSharing:     true,
			FeatureCustomActivities: true,
			FeatureVideoCalls:       true,
			FeaturePriorityResponse: true,
		},
		MemoryRetentionDays: PermanentRetention,
	},
}

// tierOrder define el orden de precio ascendente para calcular RequiredPlan.
var tierOrder = []SubscriptionTier{TierFree, TierBasic, TierPremium, TierUltimate}

// NormalizeTier mapea valores desconocidos a free y lifetime a ultimate.
func NormalizeTier(t SubscriptionTier) SubscriptionTier {
	if t == TierLifetime {
		return TierUltimate
	}
	if _, ok := tierConfigs[t]; !ok {
		return TierFree
	}
	return t
}

// ConfigForTier devuelve la configuracion estatica del plan.
func ConfigForTier(t SubscriptionTier) TierConfig {
	return tierConfigs[NormalizeTier(t)]
}

// RequiredPlanFor devuelve el plan mas barato que incluye la feature, o ""
// si ningun plan la ofrece.
func RequiredPlanFor(featureID string) SubscriptionTier {
	for _, t := range tierOrder {
		if tierConfigs[t].Features[featureID] {
			return t
		}
	}
	return ""
}
