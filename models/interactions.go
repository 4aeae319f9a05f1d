package models

import "time"

// SwipeRecord is one swipe decision. There is at most one per directed pair.
type SwipeRecord struct {
	PK        string    `dynamodbav:"PK" json:"-"` // ✅ Partition Key: "USER#swiper"
	SK        string    `dynamodbav:"SK" json:"-"` // ✅ Sort Key: "SWIPE#swiped"
	ID        string    `dynamodbav:"id" json:"id"`
	Swiper    string    `dynamodbav:"swiper" json:"swiper"`
	Swiped    string    `dynamodbav:"swiped" json:"swiped"`
	Direction string    `dynamodbav:"direction" json:"direction"` // left, right
	CreatedAt time.Time `dynamodbav:"created" json:"created"`
}

// SwipePK builds the partition key of a swiper's records
func SwipePK(swiper string) string { return "USER#" + swiper }

// SwipeSK builds the sort key of a swipe on a target
func SwipeSK(swiped string) string { return "SWIPE#" + swiped }

// SwipesTable is the DynamoDB table name for swipe decisions
const SwipesTable = "Swipes"
