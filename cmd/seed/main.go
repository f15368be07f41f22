package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

type seedOptions struct {
	surveyCount     int
	questionCount   int
	responderCount  int
	dropCollections bool
	randomSeed      int64
}

type collections struct {
	surveys    string
	responders string
	answers    string
}

type surveyDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	Status      string             `bson:"status"`
	Questions   []questionDocument `bson:"questions"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

type questionDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Type         string             `bson:"type"`
	QuestionText string             `bson:"questionText"`
}

type responderDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"passwordHash"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func main() {
	opts := parseFlags()

	_ = godotenv.Load()

	cfg := collections{
		surveys:    envOrDefault("SURVEY_COLLECTION", "surveys"),
		responders: envOrDefault("RESPONDER_COLLECTION", "responders"),
		answers:    envOrDefault("ANSWER_COLLECTION", "answers"),
	}

	mongoURI := envOrDefault("MONGO_URI", "mongodb://localhost:27017")
	dbName := envOrDefault("MONGO_DB", "survey-feedback")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("MongoDB 接続に失敗しました: %v", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	db := client.Database(dbName)

	if opts.dropCollections {
		if err := dropCollections(ctx, db, cfg); err != nil {
			log.Fatalf("コレクション削除に失敗しました: %v", err)
		}
		log.Printf("既存コレクションを削除しました")
	}

	if err := ensureIndexes(ctx, db, cfg); err != nil {
		log.Fatalf("インデックス作成に失敗しました: %v", err)
	}

	rng := rand.New(rand.NewSource(opts.randomSeed))

	surveyDocs := generateSurveys(rng, opts.surveyCount, opts.questionCount)
	if len(surveyDocs) == 0 {
		log.Fatal("survey docs が生成されませんでした")
	}
	if err := insertMany(ctx, db.Collection(cfg.surveys), toAnySlice(surveyDocs)); err != nil {
		log.Fatalf("アンケートデータの挿入に失敗しました: %v", err)
	}

	responderDocs, err := generateResponders(opts.responderCount)
	if err != nil {
		log.Fatalf("回答者データの生成に失敗しました: %v", err)
	}
	if err := insertMany(ctx, db.Collection(cfg.responders), toAnySlice(responderDocs)); err != nil {
		log.Fatalf("回答者データの挿入に失敗しました: %v", err)
	}

	log.Printf("Seed 完了: surveys=%d responders=%d", len(surveyDocs), len(responderDocs))
	log.Printf("Mongo: %s / %s", mongoURI, dbName)
	log.Printf("デモ用ログイン: responder1@example.com / password123")
}

func parseFlags() seedOptions {
	var opts seedOptions
	flag.IntVar(&opts.surveyCount, "surveys", 5, "生成するアンケート数（末尾の1件は inactive）")
	flag.IntVar(&opts.questionCount, "questions", 6, "アンケートあたりの設問数")
	flag.IntVar(&opts.responderCount, "responders", 3, "生成する回答者数")
	flag.BoolVar(&opts.dropCollections, "drop", true, "既存コレクションを削除してから投入する")
	defaultSeed := time.Now().UnixNano()
	flag.Int64Var(&opts.randomSeed, "seed", defaultSeed, "乱数シード（再現用）")
	flag.Parse()

	if opts.surveyCount <= 0 {
		log.Fatal("surveys は 1 以上を指定してください")
	}
	if opts.questionCount < 3 {
		opts.questionCount = 3
	}
	if opts.responderCount <= 0 {
		opts.responderCount = 1
	}
	return opts
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func dropCollections(ctx context.Context, db *mongo.Database, cfg collections) error {
	for _, name := range []string{cfg.surveys, cfg.responders, cfg.answers} {
		if err := db.Collection(name).Drop(ctx); err != nil {
			// Drop は存在しない場合も err を返すので warning ログにとどめる
			log.Printf("WARN: コレクション %s の削除に失敗: %v", name, err)
		}
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, cfg collections) error {
	if _, err := db.Collection(cfg.surveys).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}},
		Options: options.Index().SetName("idx_survey_status_created"),
	}); err != nil {
		return err
	}

	if _, err := db.Collection(cfg.responders).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("ux_responder_email").SetUnique(true),
	}); err != nil {
		return err
	}

	if _, err := db.Collection(cfg.answers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "responderId", Value: 1}, {Key: "questionId", Value: 1}},
		Options: options.Index().SetName("ux_responder_question").SetUnique(true),
	}); err != nil {
		return err
	}

	return nil
}

var surveyTitles = []string{
	"カスタマーサポート満足度調査",
	"新機能フィードバック",
	"オンボーディング体験アンケート",
	"ドキュメント品質調査",
	"四半期サービス評価",
	"サポート応答時間アンケート",
}

var questionTemplates = []struct {
	qType string
	text  string
}{
	{"scale", "サポート対応の総合満足度を1〜5で評価してください"},
	{"text", "今回の対応で良かった点を教えてください"},
	{"multiple_choice", "次のうち最も重視する項目を選んでください"},
	{"scale", "再度このサービスを利用したいと思いますか（1〜5）"},
	{"text", "改善してほしい点があれば具体的に記入してください"},
	{"multiple_choice", "利用頻度に最も近いものを選んでください"},
	{"scale", "問い合わせから解決までの速さを評価してください"},
	{"text", "その他ご意見があればご記入ください"},
}

func generateSurveys(rng *rand.Rand, count, questionCount int) []surveyDocument {
	now := time.Now().UTC()
	docs := make([]surveyDocument, 0, count)

	for i := 0; i < count; i++ {
		status := "active"
		// 末尾の1件は inactive として一覧から除外される挙動の確認に使う
		if count > 1 && i == count-1 {
			status = "inactive"
		}

		questions := make([]questionDocument, 0, questionCount)
		for j := 0; j < questionCount; j++ {
			tmpl := questionTemplates[(i+j)%len(questionTemplates)]
			questions = append(questions, questionDocument{
				ID:           primitive.NewObjectID(),
				Type:         tmpl.qType,
				QuestionText: tmpl.text,
			})
		}

		createdAt := now.Add(-time.Duration(rng.Intn(240)) * time.Hour)
		docs = append(docs, surveyDocument{
			ID:          primitive.NewObjectID(),
			Title:       surveyTitles[i%len(surveyTitles)],
			Description: fmt.Sprintf("サンプルアンケート #%d", i+1),
			Status:      status,
			Questions:   questions,
			CreatedAt:   createdAt,
			UpdatedAt:   createdAt,
		})
	}

	return docs
}

func generateResponders(count int) ([]responderDocument, error) {
	now := time.Now().UTC()
	docs := make([]responderDocument, 0, count)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	for i := 0; i < count; i++ {
		docs = append(docs, responderDocument{
			ID:           primitive.NewObjectID(),
			Email:        fmt.Sprintf("responder%d@example.com", i+1),
			PasswordHash: string(hash),
			CreatedAt:    now,
		})
	}

	return docs, nil
}

func insertMany(ctx context.Context, coll *mongo.Collection, docs []any) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := coll.InsertMany(ctx, docs)
	return err
}

func toAnySlice[T any](in []T) []any {
	out := make([]any, 0, len(in))
	for _, v := range in {
		out = append(out, v)
	}
	return out
}
