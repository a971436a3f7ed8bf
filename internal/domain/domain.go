// Package domain holds the gorm models for the feedback analysis pipeline.
//
// Survey, SurveyTheme, FeedbackSession, SessionResponse and ResponseSignal are
// produced upstream (conversation capture and signal extraction) and read here.
// AggregatedSignal, SessionInsight, SurveyAnalyticsSnapshot and NarrativeReport
// are owned by this pipeline.
package domain
