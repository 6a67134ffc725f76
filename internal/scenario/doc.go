// Package scenario はワーカープールの負荷シナリオ実行機能を提供する。
//
// シナリオエンジンはプールを起動し、指定数の乗算タスクを投入して
// 全ての Future を待ち合わせ、結果の正しさと実行時間を検証する。
//
// # 機能
//
// - シナリオ定義と実行
// - 定義済みプリセットシナリオ
// - 故障注入（エラー、panic）
// - 実行結果のレポート生成
//
// # プリセットシナリオ
//
// - quick: 短時間の動作確認
// - basic: 100タスクを4ワーカーで処理
// - stress: 多数の短いタスク
// - faulty: エラーとpanicを混ぜた故障注入テスト
//
// # 使用例
//
//	config := scenario.BasicScenario()
//	engine := scenario.New(config)
//	result, err := engine.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Report())
package scenario
